package handlers

import (
	"net/http"
	"strings"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/interfaces/http/response"
	"digimarket.backend/internal/usecases"
	"github.com/gin-gonic/gin"
)

// VendorHandler handles vendor onboarding and moderation
type VendorHandler struct {
	vendorUsecase *usecases.VendorUsecase
}

// NewVendorHandler creates a new vendor handler
func NewVendorHandler(vendorUsecase *usecases.VendorUsecase) *VendorHandler {
	return &VendorHandler{vendorUsecase: vendorUsecase}
}

// GetProfile returns the caller's profile in the current tenant
// GET /api/v1/vendor/profile
func (h *VendorHandler) GetProfile(c *gin.Context) {
	t, ok := tenant(c)
	if !ok {
		return
	}
	req, ok := requester(c)
	if !ok {
		return
	}

	profile, err := h.vendorUsecase.GetOwnProfile(c.Request.Context(), t.Key, req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}

// CreateProfile starts vendor onboarding
// POST /api/v1/vendor/profile
func (h *VendorHandler) CreateProfile(c *gin.Context) {
	t, ok := tenant(c)
	if !ok {
		return
	}
	req, ok := requester(c)
	if !ok {
		return
	}
	var input entities.VendorProfileInput
	if !bindJSON(c, &input) {
		return
	}

	profile, err := h.vendorUsecase.CreateProfile(c.Request.Context(), t, req.UserID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"profile": profile})
}

// UpdateProfile edits the caller's profile
// PUT /api/v1/vendor/profile
func (h *VendorHandler) UpdateProfile(c *gin.Context) {
	t, ok := tenant(c)
	if !ok {
		return
	}
	req, ok := requester(c)
	if !ok {
		return
	}
	var input entities.VendorProfileInput
	if !bindJSON(c, &input) {
		return
	}

	profile, err := h.vendorUsecase.UpdateProfile(c.Request.Context(), t.Key, req.UserID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}

// Entitlement reports whether the caller may publish in the current tenant
// GET /api/v1/vendor/entitlement
func (h *VendorHandler) Entitlement(c *gin.Context) {
	t, ok := tenant(c)
	if !ok {
		return
	}
	req, ok := requester(c)
	if !ok {
		return
	}

	ent, err := h.vendorUsecase.CanPublish(c.Request.Context(), t.Key, req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"entitlement": ent})
}

// List lists vendor profiles of a tenant, the request tenant unless ?tenant= is set
// GET /api/v1/admin/vendors?status=&tenant=
func (h *VendorHandler) List(c *gin.Context) {
	tenantKey := strings.TrimSpace(c.Query("tenant"))
	if tenantKey == "" {
		t, ok := tenant(c)
		if !ok {
			return
		}
		tenantKey = t.Key
	}

	var status *entities.VendorStatus
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("status"))); raw != "" {
		s := entities.VendorStatus(raw)
		switch s {
		case entities.VendorStatusPending, entities.VendorStatusApproved, entities.VendorStatusBlocked:
			status = &s
		default:
			response.Error(c, domainerrors.Validation("Unbekannter Status"))
			return
		}
	}
	p := pagination(c)

	profiles, total, err := h.vendorUsecase.ListProfiles(c.Request.Context(), tenantKey, status, p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, listResponse(profiles, total, p))
}

// SetStatus moderates a vendor profile
// PUT /api/v1/admin/vendors/:id/status
func (h *VendorHandler) SetStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input entities.SetVendorStatusInput
	if !bindJSON(c, &input) {
		return
	}

	profile, err := h.vendorUsecase.SetVendorStatus(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}
