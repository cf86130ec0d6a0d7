package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantKey       string    `gorm:"type:varchar(64);not null;index"`
	VendorID        uuid.UUID `gorm:"type:uuid;not null;index"`
	VendorProfileID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title           string    `gorm:"type:varchar(200);not null"`
	Description     string    `gorm:"type:text"`
	PriceCents      int64     `gorm:"not null;default:0"`
	Category        string    `gorm:"type:varchar(64);index"`
	FileRef         string    `gorm:"type:varchar(512)"`
	ThumbnailURL    string    `gorm:"type:varchar(2048)"`
	Status          string    `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	IsActive        bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
