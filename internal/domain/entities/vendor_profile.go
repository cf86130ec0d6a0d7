package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// VendorStatus represents the moderation status of a vendor profile
type VendorStatus string

const (
	VendorStatusPending  VendorStatus = "PENDING"
	VendorStatusApproved VendorStatus = "APPROVED"
	VendorStatusBlocked  VendorStatus = "BLOCKED"
)

// VendorProfile is a per-tenant seller identity; unique on (TenantKey, UserID)
type VendorProfile struct {
	ID          uuid.UUID         `json:"id"`
	TenantKey   string            `json:"tenantKey"`
	UserID      uuid.UUID         `json:"userId"`
	Status      VendorStatus      `json:"status"`
	IsPublic    bool              `json:"isPublic"`
	DisplayName string            `json:"displayName"`
	Bio         string            `json:"bio,omitempty"`
	AvatarURL   string            `json:"avatarUrl,omitempty"`
	SocialLinks map[string]string `json:"socialLinks,omitempty"`
	Slug        string            `json:"slug"`
	ApprovedAt  null.Time         `json:"approvedAt,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// IsApproved reports whether the profile may publish
func (p *VendorProfile) IsApproved() bool {
	return p != nil && p.Status == VendorStatusApproved
}

// VendorProfileInput represents the fields a vendor may edit on its own profile.
// Tenant and user are always taken from the request context.
type VendorProfileInput struct {
	DisplayName string            `json:"displayName" binding:"required,min=2,max=120"`
	Bio         string            `json:"bio" binding:"max=4000"`
	AvatarURL   string            `json:"avatarUrl" binding:"max=2048"`
	SocialLinks map[string]string `json:"socialLinks"`
	Slug        string            `json:"slug" binding:"max=64"`
}

// SetVendorStatusInput represents an admin moderation decision
type SetVendorStatusInput struct {
	Status   VendorStatus `json:"status" binding:"required,oneof=PENDING APPROVED BLOCKED"`
	IsPublic *bool        `json:"isPublic"`
}

// Entitlement is the result of a successful publish check.
type Entitlement struct {
	Allowed   bool      `json:"allowed"`
	ProfileID uuid.UUID `json:"profileId"`
}

// PublicVendor is the public page of an approved vendor.
type PublicVendor struct {
	Profile  *VendorProfile `json:"profile"`
	Products []*Product     `json:"products"`
}
