package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PayoutStatus represents the payout lifecycle status
type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "PENDING"
	PayoutStatusPaid      PayoutStatus = "PAID"
	PayoutStatusCancelled PayoutStatus = "CANCELLED"
)

// Payout represents a vendor payout request
type Payout struct {
	ID          uuid.UUID    `json:"id"`
	VendorID    uuid.UUID    `json:"vendorId"`
	AmountCents int64        `json:"amountCents"`
	Status      PayoutStatus `json:"status"`
	Note        string       `json:"note,omitempty"`
	PaidAt      null.Time    `json:"paidAt,omitempty"`
	CancelledAt null.Time    `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Balance is a vendor's ledger position in minor units
type Balance struct {
	TotalEarningsCents int64 `json:"totalEarningsCents"`
	PaidCents          int64 `json:"paidCents"`
	PendingCents       int64 `json:"pendingCents"`
	AvailableCents     int64 `json:"availableCents"`
	HasPendingRequest  bool  `json:"hasPendingRequest"`
}

// NewBalance computes available = max(0, total - paid - pending)
func NewBalance(total, paid, pending int64, hasPending bool) Balance {
	available := total - paid - pending
	if available < 0 {
		available = 0
	}
	return Balance{
		TotalEarningsCents: total,
		PaidCents:          paid,
		PendingCents:       pending,
		AvailableCents:     available,
		HasPendingRequest:  hasPending,
	}
}

// RequestPayoutInput represents a vendor payout request; an empty amount
// requests the full available balance.
type RequestPayoutInput struct {
	AmountCents *int64 `json:"amountCents"`
	Note        string `json:"note" binding:"max=500"`
}

// PayoutDecisionInput carries an optional admin note
type PayoutDecisionInput struct {
	Note string `json:"note" binding:"max=500"`
}
