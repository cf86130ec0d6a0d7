package handlers

import (
	"net/http"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/interfaces/http/response"
	"digimarket.backend/internal/usecases"
	"digimarket.backend/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// OrderHandler handles checkout, order history and downloads
type OrderHandler struct {
	orderUsecase    *usecases.OrderUsecase
	downloadUsecase *usecases.DownloadUsecase
	metrics         *metrics.Registry
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderUsecase *usecases.OrderUsecase, downloadUsecase *usecases.DownloadUsecase, reg *metrics.Registry) *OrderHandler {
	return &OrderHandler{orderUsecase: orderUsecase, downloadUsecase: downloadUsecase, metrics: reg}
}

// Checkout starts a checkout for a marketplace product
// POST /api/v1/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	t, ok := tenant(c)
	if !ok {
		return
	}
	req, ok := requester(c)
	if !ok {
		return
	}
	var input entities.CheckoutInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := h.orderUsecase.Checkout(c.Request.Context(), t, req.UserID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"order":       result.Order,
		"checkoutUrl": result.CheckoutURL,
		"fulfilled":   result.Fulfilled,
	})
}

// ListOrders lists the caller's orders with their download state
// GET /api/v1/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	p := pagination(c)

	views, total, err := h.orderUsecase.ListOrders(c.Request.Context(), req.UserID, p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, listResponse(views, total, p))
}

// Download consumes one download of an order. Requests preferring HTML are
// redirected to the signed file URL, everything else gets the grant as JSON.
// GET /api/v1/orders/:id/download
func (h *OrderHandler) Download(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	grant, err := h.downloadUsecase.AttemptDownload(c.Request.Context(), id, req)
	if err != nil {
		h.metrics.DownloadAttempt(domainerrors.Code(err))
		response.Error(c, err)
		return
	}
	h.metrics.DownloadAttempt("OK")

	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEJSON {
		response.Success(c, http.StatusOK, gin.H{"download": grant})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, grant.URL)
}
