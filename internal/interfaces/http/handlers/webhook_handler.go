package handlers

import (
	"net/http"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/infrastructure/payment"
	"digimarket.backend/internal/interfaces/http/response"
	"digimarket.backend/internal/usecases"
	"digimarket.backend/pkg/logger"
	"digimarket.backend/pkg/metrics"
	"digimarket.backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// PaymentSignatureHeader carries "t=<unix>,v1=<hex>" from the provider.
	PaymentSignatureHeader = "X-Payment-Signature"

	maxWebhookBody = 1 << 20
)

// WebhookHandler handles payment provider callbacks
type WebhookHandler struct {
	fulfillment *usecases.FulfillmentUsecase
	verifier    *payment.Verifier
	metrics     *metrics.Registry
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(fulfillment *usecases.FulfillmentUsecase, verifier *payment.Verifier, reg *metrics.Registry) *WebhookHandler {
	return &WebhookHandler{fulfillment: fulfillment, verifier: verifier, metrics: reg}
}

// HandlePayment verifies and applies a checkout event
// POST /api/v1/webhooks/payments
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	ctx := c.Request.Context()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := c.GetRawData()
	if err != nil {
		response.Error(c, domainerrors.Validation("Ungültiger Request-Body"))
		return
	}

	if err := h.verifier.Verify(payload, c.GetHeader(PaymentSignatureHeader)); err != nil {
		logger.Warn(ctx, "Webhook signature rejected", zap.Error(err))
		h.metrics.WebhookEvent("unknown", "bad_signature")
		response.ErrorWithError(c, http.StatusBadRequest, "INVALID_SIGNATURE", "Ungültige Signatur")
		return
	}

	evt, err := payment.ParseEvent(payload)
	if err != nil {
		h.metrics.WebhookEvent("unknown", "malformed")
		response.Error(c, domainerrors.Validation("Ungültiges Event"))
		return
	}

	err = h.fulfillment.HandleCheckoutEvent(ctx, entities.CheckoutEvent{
		ID:          evt.ID,
		Type:        evt.Type,
		OrderID:     utils.ParseUUIDOrNil(evt.OrderID()),
		CheckoutRef: evt.Data.CheckoutRef,
	})
	if err != nil {
		h.metrics.WebhookEvent(evt.Type, domainerrors.Code(err))
		logger.Warn(ctx, "Webhook event not applied", zap.String("event_id", evt.ID), zap.String("type", evt.Type), zap.Error(err))
		response.Error(c, err)
		return
	}

	h.metrics.WebhookEvent(evt.Type, "OK")
	response.Success(c, http.StatusOK, gin.H{"received": true})
}
