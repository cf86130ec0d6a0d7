package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Payout rows carry a partial unique index on vendor_id WHERE status = 'PENDING'
// (see the migrations); gorm tags cannot express it.
type Payout struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	VendorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	AmountCents int64     `gorm:"not null"`
	Status      string    `gorm:"type:varchar(20);not null"`
	Note        string    `gorm:"type:varchar(500)"`
	PaidAt      null.Time
	CancelledAt null.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
