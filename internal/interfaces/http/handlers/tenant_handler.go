package handlers

import (
	"net/http"

	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/internal/interfaces/http/response"
	"digimarket.backend/internal/usecases"
	"github.com/gin-gonic/gin"
)

// TenantHandler serves the resolved tenant and tenant administration.
type TenantHandler struct {
	tenantUsecase *usecases.TenantUsecase
}

func NewTenantHandler(tenantUsecase *usecases.TenantUsecase) *TenantHandler {
	return &TenantHandler{tenantUsecase: tenantUsecase}
}

// Current returns the tenant of the request host
// GET /api/v1/tenant
func (h *TenantHandler) Current(c *gin.Context) {
	t, ok := tenant(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tenant": t})
}

// List lists all tenants
// GET /api/v1/admin/tenants
func (h *TenantHandler) List(c *gin.Context) {
	tenants, err := h.tenantUsecase.ListTenants(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": tenants})
}

// Get returns one tenant with its domains
// GET /api/v1/admin/tenants/:key
func (h *TenantHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	t, err := h.tenantUsecase.GetTenant(ctx, c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	domains, err := h.tenantUsecase.ListDomains(ctx, t.Key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tenant": t, "domains": domains})
}

// Create creates a tenant
// POST /api/v1/admin/tenants
func (h *TenantHandler) Create(c *gin.Context) {
	var input entities.CreateTenantInput
	if !bindJSON(c, &input) {
		return
	}

	t, err := h.tenantUsecase.CreateTenant(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"tenant": t})
}

// Update changes tenant settings
// PUT /api/v1/admin/tenants/:key
func (h *TenantHandler) Update(c *gin.Context) {
	var input entities.UpdateTenantInput
	if !bindJSON(c, &input) {
		return
	}

	t, err := h.tenantUsecase.UpdateTenant(c.Request.Context(), c.Param("key"), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tenant": t})
}

// AddDomain attaches a custom domain
// POST /api/v1/admin/tenants/:key/domains
func (h *TenantHandler) AddDomain(c *gin.Context) {
	var input entities.AddDomainInput
	if !bindJSON(c, &input) {
		return
	}

	d, err := h.tenantUsecase.AddDomain(c.Request.Context(), c.Param("key"), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"domain": d})
}

// RemoveDomain detaches a domain
// DELETE /api/v1/admin/tenants/:key/domains/:id
func (h *TenantHandler) RemoveDomain(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.tenantUsecase.RemoveDomain(c.Request.Context(), c.Param("key"), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}

// SetPrimaryDomain marks a domain as primary
// PUT /api/v1/admin/tenants/:key/domains/:id/primary
func (h *TenantHandler) SetPrimaryDomain(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.tenantUsecase.SetPrimaryDomain(c.Request.Context(), c.Param("key"), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}
