package entities

import (
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TenantMode represents how a tenant presents its catalog
type TenantMode string

const (
	TenantModeWhiteLabel  TenantMode = "WHITE_LABEL"
	TenantModeMarketplace TenantMode = "MARKETPLACE"
)

// CatalogMode restricts which prices a tenant accepts
type CatalogMode string

const (
	CatalogModeFreeOnly CatalogMode = "FREE_ONLY"
	CatalogModePaidOnly CatalogMode = "PAID_ONLY"
	CatalogModeMixed    CatalogMode = "MIXED"
)

// VendorOnboarding is the tenant's policy for new vendor profiles
type VendorOnboarding string

const (
	VendorOnboardingOpen        VendorOnboarding = "OPEN"
	VendorOnboardingAutoApprove VendorOnboarding = "AUTO_APPROVE"
	VendorOnboardingClosed      VendorOnboarding = "CLOSED"
)

// TenantStatus represents a tenant's soft lifecycle
type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "ACTIVE"
	TenantStatusArchived TenantStatus = "ARCHIVED"
)

// Tenant represents a marketplace instance
type Tenant struct {
	ID               uuid.UUID        `json:"id"`
	Key              string           `json:"key"`
	Name             string           `json:"name"`
	Mode             TenantMode       `json:"mode"`
	CatalogMode      CatalogMode      `json:"catalogMode"`
	PaymentsEnabled  bool             `json:"paymentsEnabled"`
	VendorOnboarding VendorOnboarding `json:"vendorOnboarding"`
	Status           TenantStatus     `json:"status"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// TenantDomain binds a hostname to exactly one tenant
type TenantDomain struct {
	ID        uuid.UUID `json:"id"`
	TenantKey string    `json:"tenantKey"`
	Domain    string    `json:"domain"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TenantContext is the resolved, request-scoped view of a tenant.
type TenantContext struct {
	Key              string           `json:"key"`
	Name             string           `json:"name"`
	Mode             TenantMode       `json:"mode"`
	CatalogMode      CatalogMode      `json:"catalogMode"`
	PaymentsEnabled  bool             `json:"paymentsEnabled"`
	VendorOnboarding VendorOnboarding `json:"vendorOnboarding"`
	IsDefault        bool             `json:"isDefault"`
}

// ContextFromTenant builds the request view of a tenant.
func ContextFromTenant(t *Tenant, isDefault bool) TenantContext {
	return TenantContext{
		Key:              t.Key,
		Name:             t.Name,
		Mode:             t.Mode,
		CatalogMode:      t.CatalogMode,
		PaymentsEnabled:  t.PaymentsEnabled,
		VendorOnboarding: t.VendorOnboarding,
		IsDefault:        isDefault,
	}
}

// AllowsPrice reports whether the catalog mode accepts a price in minor units.
func (c TenantContext) AllowsPrice(priceCents int64) bool {
	switch c.CatalogMode {
	case CatalogModeFreeOnly:
		return priceCents == 0
	case CatalogModePaidOnly:
		return priceCents > 0
	default:
		return priceCents >= 0
	}
}

// NormalizeHost turns a raw Host header into the form stored in TenantDomain.
// Port, a leading "www." and a trailing dot are removed; the result is lower case.
func NormalizeHost(raw string) string {
	host := strings.ToLower(strings.TrimSpace(raw))
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	host = strings.TrimSuffix(host, ".")
	return strings.TrimPrefix(host, "www.")
}

// CreateTenantInput represents input for creating a tenant
type CreateTenantInput struct {
	Key              string           `json:"key" binding:"required,min=2,max=64"`
	Name             string           `json:"name" binding:"required,min=2,max=255"`
	Mode             TenantMode       `json:"mode" binding:"omitempty,oneof=WHITE_LABEL MARKETPLACE"`
	CatalogMode      CatalogMode      `json:"catalogMode" binding:"omitempty,oneof=FREE_ONLY PAID_ONLY MIXED"`
	PaymentsEnabled  bool             `json:"paymentsEnabled"`
	VendorOnboarding VendorOnboarding `json:"vendorOnboarding" binding:"omitempty,oneof=OPEN AUTO_APPROVE CLOSED"`
}

// UpdateTenantInput represents a partial tenant update
type UpdateTenantInput struct {
	Name             *string           `json:"name" binding:"omitempty,min=2,max=255"`
	Mode             *TenantMode       `json:"mode" binding:"omitempty,oneof=WHITE_LABEL MARKETPLACE"`
	CatalogMode      *CatalogMode      `json:"catalogMode" binding:"omitempty,oneof=FREE_ONLY PAID_ONLY MIXED"`
	PaymentsEnabled  *bool             `json:"paymentsEnabled"`
	VendorOnboarding *VendorOnboarding `json:"vendorOnboarding" binding:"omitempty,oneof=OPEN AUTO_APPROVE CLOSED"`
	Status           *TenantStatus     `json:"status" binding:"omitempty,oneof=ACTIVE ARCHIVED"`
}

// AddDomainInput represents input for binding a custom domain
type AddDomainInput struct {
	Domain    string `json:"domain" binding:"required"`
	IsPrimary bool   `json:"isPrimary"`
}
