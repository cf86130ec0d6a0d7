package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

type VendorProfile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantKey   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_vendor_profiles_tenant_user;uniqueIndex:idx_vendor_profiles_tenant_slug"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vendor_profiles_tenant_user"`
	Status      string    `gorm:"type:varchar(20);not null;default:'PENDING'"`
	IsPublic    bool      `gorm:"not null;default:false"`
	DisplayName string    `gorm:"type:varchar(120);not null"`
	Bio         string    `gorm:"type:text"`
	AvatarURL   string    `gorm:"type:varchar(2048)"`
	SocialLinks null.JSON `gorm:"type:text"`
	Slug        string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_vendor_profiles_tenant_slug"`
	ApprovedAt  null.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
