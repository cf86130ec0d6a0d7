package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// OrderStatus represents the order lifecycle status
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusFailed    OrderStatus = "FAILED"
)

// IsPaid reports whether the status counts as paid for downloads and earnings
func (s OrderStatus) IsPaid() bool {
	return s == OrderStatusPaid || s == OrderStatusCompleted
}

// Order represents a purchase of one product by one buyer
type Order struct {
	ID                    uuid.UUID   `json:"id"`
	TenantKey             string      `json:"tenantKey"`
	BuyerID               uuid.UUID   `json:"buyerId"`
	ProductID             uuid.UUID   `json:"productId"`
	VendorID              uuid.UUID   `json:"vendorId"`
	AmountCents           int64       `json:"amountCents"`
	Currency              string      `json:"currency"`
	VendorEarningsCents   null.Int64  `json:"vendorEarningsCents"`
	PlatformEarningsCents null.Int64  `json:"platformEarningsCents"`
	Status                OrderStatus `json:"status"`
	CheckoutRef           string      `json:"checkoutRef"`
	PaidAt                null.Time   `json:"paidAt,omitempty"`
	CreatedAt             time.Time   `json:"createdAt"`
	UpdatedAt             time.Time   `json:"updatedAt"`
}

// CheckoutInput represents a buyer's checkout request
type CheckoutInput struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
}

// CheckoutResult is returned when a checkout starts. Free orders are
// fulfilled immediately and carry no checkout URL.
type CheckoutResult struct {
	Order       *Order `json:"order"`
	CheckoutURL string `json:"checkoutUrl,omitempty"`
	Fulfilled   bool   `json:"fulfilled"`
}

// OrderView is a buyer's order together with its product and link state
type OrderView struct {
	Order         *Order    `json:"order"`
	ProductTitle  string    `json:"productTitle"`
	LinkState     LinkState `json:"linkState"`
	DownloadsLeft int       `json:"downloadsLeft"`
}

// Checkout event types delivered by the payment provider webhook
const (
	CheckoutEventCompleted = "checkout.completed"
	CheckoutEventFailed    = "checkout.failed"
)

// CheckoutEvent is a verified payment provider notification
type CheckoutEvent struct {
	ID          string
	Type        string
	OrderID     uuid.UUID
	CheckoutRef string
	AmountCents int64
}
