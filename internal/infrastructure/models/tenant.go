package models

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Key              string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name             string    `gorm:"type:varchar(255);not null"`
	Mode             string    `gorm:"type:varchar(20);not null"`
	CatalogMode      string    `gorm:"type:varchar(20);not null"`
	PaymentsEnabled  bool      `gorm:"not null;default:false"`
	VendorOnboarding string    `gorm:"type:varchar(20);not null"`
	Status           string    `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type TenantDomain struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantKey string    `gorm:"type:varchar(64);index;not null"`
	Domain    string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	IsPrimary bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
