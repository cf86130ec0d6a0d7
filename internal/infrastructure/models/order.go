package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

type Order struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantKey             string    `gorm:"type:varchar(64);not null"`
	BuyerID               uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID             uuid.UUID `gorm:"type:uuid;not null"`
	VendorID              uuid.UUID `gorm:"type:uuid;not null;index"`
	AmountCents           int64     `gorm:"not null"`
	Currency              string    `gorm:"type:varchar(3);not null"`
	VendorEarningsCents   null.Int64
	PlatformEarningsCents null.Int64
	Status                string `gorm:"type:varchar(20);not null;index"`
	CheckoutRef           string `gorm:"type:varchar(64);uniqueIndex;not null"`
	PaidAt                null.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type DownloadLink struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	FileRef       string    `gorm:"type:varchar(512);not null"`
	ExpiresAt     time.Time `gorm:"not null"`
	IsActive      bool      `gorm:"not null;default:true"`
	MaxDownloads  int       `gorm:"not null"`
	DownloadCount int       `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
