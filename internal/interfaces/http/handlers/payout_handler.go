package handlers

import (
	"context"
	"net/http"
	"strings"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/interfaces/http/response"
	"digimarket.backend/internal/usecases"
	"digimarket.backend/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PayoutHandler handles vendor payout requests and their administration
type PayoutHandler struct {
	payoutUsecase *usecases.PayoutUsecase
	metrics       *metrics.Registry
}

// NewPayoutHandler creates a new payout handler
func NewPayoutHandler(payoutUsecase *usecases.PayoutUsecase, reg *metrics.Registry) *PayoutHandler {
	return &PayoutHandler{payoutUsecase: payoutUsecase, metrics: reg}
}

// Balance returns the caller's earnings ledger
// GET /api/v1/vendor/payouts/balance
func (h *PayoutHandler) Balance(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}

	balance, err := h.payoutUsecase.ComputeAvailableBalance(c.Request.Context(), req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"balance": balance})
}

// ListOwn lists the caller's payouts
// GET /api/v1/vendor/payouts
func (h *PayoutHandler) ListOwn(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	p := pagination(c)

	payouts, total, err := h.payoutUsecase.ListOwn(c.Request.Context(), req.UserID, p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, listResponse(payouts, total, p))
}

// Request asks for a payout of the available balance, or part of it
// POST /api/v1/vendor/payouts
func (h *PayoutHandler) Request(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	var input entities.RequestPayoutInput
	if c.Request.ContentLength > 0 && !bindJSON(c, &input) {
		return
	}

	payout, err := h.payoutUsecase.RequestPayout(c.Request.Context(), req.UserID, &input)
	if err != nil {
		h.metrics.PayoutRequest(domainerrors.Code(err))
		response.Error(c, err)
		return
	}
	h.metrics.PayoutRequest("OK")
	response.Success(c, http.StatusCreated, gin.H{"payout": payout})
}

// List lists all payouts
// GET /api/v1/admin/payouts?status=
func (h *PayoutHandler) List(c *gin.Context) {
	var status *entities.PayoutStatus
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("status"))); raw != "" {
		s := entities.PayoutStatus(raw)
		switch s {
		case entities.PayoutStatusPending, entities.PayoutStatusPaid, entities.PayoutStatusCancelled:
			status = &s
		default:
			response.Error(c, domainerrors.Validation("Unbekannter Status"))
			return
		}
	}
	p := pagination(c)

	payouts, total, err := h.payoutUsecase.List(c.Request.Context(), status, p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, listResponse(payouts, total, p))
}

// MarkPaid settles a pending payout
// PUT /api/v1/admin/payouts/:id/paid
func (h *PayoutHandler) MarkPaid(c *gin.Context) {
	h.decide(c, h.payoutUsecase.MarkPaid)
}

// Cancel cancels a pending payout
// PUT /api/v1/admin/payouts/:id/cancel
func (h *PayoutHandler) Cancel(c *gin.Context) {
	h.decide(c, h.payoutUsecase.Cancel)
}

func (h *PayoutHandler) decide(c *gin.Context, apply payoutDecision) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input entities.PayoutDecisionInput
	if c.Request.ContentLength > 0 && !bindJSON(c, &input) {
		return
	}

	payout, err := apply(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payout": payout})
}

type payoutDecision func(ctx context.Context, id uuid.UUID, input *entities.PayoutDecisionInput) (*entities.Payout, error)
