package entities

import (
	"strings"
	"time"

	domainerrors "digimarket.backend/internal/domain/errors"
	"github.com/google/uuid"
)

// ProductStatus represents the product lifecycle status
type ProductStatus string

const (
	ProductStatusDraft   ProductStatus = "DRAFT"
	ProductStatusActive  ProductStatus = "ACTIVE"
	ProductStatusBlocked ProductStatus = "BLOCKED"
)

// Product represents a digital good owned by one vendor in one tenant
type Product struct {
	ID              uuid.UUID     `json:"id"`
	TenantKey       string        `json:"tenantKey"`
	VendorID        uuid.UUID     `json:"vendorId"`
	VendorProfileID uuid.UUID     `json:"vendorProfileId"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	PriceCents      int64         `json:"priceCents"`
	Category        string        `json:"category,omitempty"`
	FileRef         string        `json:"-"`
	ThumbnailURL    string        `json:"thumbnailUrl,omitempty"`
	Status          ProductStatus `json:"status"`
	IsActive        bool          `json:"isActive"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// IsFree reports whether the product can be claimed without payment
func (p *Product) IsFree() bool {
	return p.PriceCents == 0
}

// ProductOwner carries the server-derived ownership of a product. Its fields
// are unexported so request payloads can never populate it.
type ProductOwner struct {
	tenantKey string
	vendorID  uuid.UUID
	profile   *VendorProfile
}

// NewProductOwner binds a tenant, the authenticated vendor and their profile.
func NewProductOwner(tenantKey string, vendorID uuid.UUID, profile *VendorProfile) ProductOwner {
	return ProductOwner{tenantKey: tenantKey, vendorID: vendorID, profile: profile}
}

// TenantKey returns the owning tenant
func (o ProductOwner) TenantKey() string { return o.tenantKey }

// VendorID returns the owning user
func (o ProductOwner) VendorID() uuid.UUID { return o.vendorID }

// ProfileID returns the owning vendor profile, or uuid.Nil when unset
func (o ProductOwner) ProfileID() uuid.UUID {
	if o.profile == nil {
		return uuid.Nil
	}
	return o.profile.ID
}

// CanActivate reports whether products of this owner may go ACTIVE
func (o ProductOwner) CanActivate() bool {
	return o.profile.IsApproved()
}

// ProductInput is the vendor-editable part of a product. It deliberately has
// no tenant, vendor or profile fields.
type ProductInput struct {
	Title        string        `json:"title" binding:"required,min=2,max=200"`
	Description  string        `json:"description" binding:"max=10000"`
	PriceCents   *int64        `json:"priceCents" binding:"required"`
	Category     string        `json:"category" binding:"max=64"`
	FileRef      string        `json:"fileRef" binding:"max=512"`
	ThumbnailURL string        `json:"thumbnailUrl" binding:"max=2048"`
	Status       ProductStatus `json:"status" binding:"omitempty,oneof=DRAFT ACTIVE"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return domainerrors.Wrap(domainerrors.ErrValidation, "Titel fehlt")
	}
	if in.PriceCents == nil || *in.PriceCents < 0 {
		return domainerrors.Wrap(domainerrors.ErrValidation, "Preis muss eine nicht-negative ganze Zahl sein")
	}
	switch in.Status {
	case "", ProductStatusDraft, ProductStatusActive:
	default:
		return domainerrors.Wrap(domainerrors.ErrValidation, "Status muss DRAFT oder ACTIVE sein")
	}
	return nil
}

func (in ProductInput) status() ProductStatus {
	if in.Status == "" {
		return ProductStatusDraft
	}
	return in.Status
}

// NewProduct is the only way to build a product from vendor input. Ownership
// comes from owner; ACTIVE requires an approved profile.
func NewProduct(owner ProductOwner, in ProductInput) (*Product, error) {
	if owner.tenantKey == "" || owner.vendorID == uuid.Nil || owner.profile == nil {
		return nil, domainerrors.ErrProfileMissing
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	status := in.status()
	if status == ProductStatusActive && !owner.CanActivate() {
		return nil, domainerrors.ErrNotApproved
	}

	return &Product{
		TenantKey:       owner.tenantKey,
		VendorID:        owner.vendorID,
		VendorProfileID: owner.profile.ID,
		Title:           in.Title,
		Description:     in.Description,
		PriceCents:      *in.PriceCents,
		Category:        in.Category,
		FileRef:         in.FileRef,
		ThumbnailURL:    in.ThumbnailURL,
		Status:          status,
		IsActive:        status == ProductStatusActive,
	}, nil
}

// ApplyVendorUpdate applies vendor input to an existing product. Ownership is
// re-derived from owner; BLOCKED products cannot be touched by vendors.
func (p *Product) ApplyVendorUpdate(owner ProductOwner, in ProductInput) error {
	if p.VendorID != owner.vendorID || p.TenantKey != owner.tenantKey {
		return domainerrors.ErrForbidden
	}
	if p.Status == ProductStatusBlocked {
		return domainerrors.Wrap(domainerrors.ErrForbidden, "Produkt ist gesperrt")
	}
	if owner.profile == nil {
		return domainerrors.ErrProfileMissing
	}
	if err := in.validate(); err != nil {
		return err
	}
	status := in.status()
	if status == ProductStatusActive && !owner.CanActivate() {
		return domainerrors.ErrNotApproved
	}

	p.VendorProfileID = owner.profile.ID
	p.Title = in.Title
	p.Description = in.Description
	p.PriceCents = *in.PriceCents
	p.Category = in.Category
	if in.FileRef != "" {
		p.FileRef = in.FileRef
	}
	p.ThumbnailURL = in.ThumbnailURL
	p.Status = status
	p.IsActive = status == ProductStatusActive
	return nil
}

// Block suspends a product; only admins and the vendor cascade call this.
func (p *Product) Block() {
	p.Status = ProductStatusBlocked
	p.IsActive = false
}

// Unblock returns a blocked product to DRAFT so the vendor can republish it.
func (p *Product) Unblock() {
	if p.Status == ProductStatusBlocked {
		p.Status = ProductStatusDraft
		p.IsActive = false
	}
}

// ProductFilter describes a product listing query
type ProductFilter struct {
	TenantKey       string
	MarketplaceOnly bool
	Category        string
	Search          string
	VendorID        *uuid.UUID
	VendorProfileID *uuid.UUID
	ProductID       *uuid.UUID
}

// MarketplaceFilter is the starting point of every public listing. The
// repository joins the vendor account and profile and requires all of:
// same tenant, ACTIVE, isActive, vendor not blocked, profile APPROVED and public.
func MarketplaceFilter(tenantKey string) ProductFilter {
	return ProductFilter{TenantKey: tenantKey, MarketplaceOnly: true}
}

// WithCategory narrows a filter to one category
func (f ProductFilter) WithCategory(category string) ProductFilter {
	f.Category = strings.TrimSpace(category)
	return f
}

// WithSearch narrows a filter to a title/description search
func (f ProductFilter) WithSearch(q string) ProductFilter {
	f.Search = strings.TrimSpace(q)
	return f
}

// WithVendorProfile narrows a filter to one vendor profile
func (f ProductFilter) WithVendorProfile(id uuid.UUID) ProductFilter {
	f.VendorProfileID = &id
	return f
}

// WithProduct narrows a filter to a single product
func (f ProductFilter) WithProduct(id uuid.UUID) ProductFilter {
	f.ProductID = &id
	return f
}

// IsMarketplaceVisible evaluates the marketplace rule for a single product.
// Missing vendor or profile rows are treated as not visible.
func IsMarketplaceVisible(p *Product, vendor *User, profile *VendorProfile, tenantKey string) bool {
	if p == nil || vendor == nil || profile == nil {
		return false
	}
	if p.VendorID != vendor.ID || p.VendorProfileID != profile.ID {
		return false
	}
	return p.TenantKey == tenantKey &&
		p.Status == ProductStatusActive &&
		p.IsActive &&
		!vendor.IsBlocked &&
		profile.Status == VendorStatusApproved &&
		profile.IsPublic
}

// SetProductStatusInput represents an admin moderation decision on a product
type SetProductStatusInput struct {
	Blocked bool `json:"blocked"`
}
