package entities

import "time"

// Domain event types published after a committed state change.
const (
	EventOrderPaid           = "order.paid"
	EventOrderFailed         = "order.failed"
	EventVendorStatusChanged = "vendor.status_changed"
	EventPayoutRequested     = "payout.requested"
	EventPayoutPaid          = "payout.paid"
	EventPayoutCancelled     = "payout.cancelled"
)

// DomainEvent is the envelope written to the event stream.
type DomainEvent struct {
	Type       string                 `json:"type"`
	Key        string                 `json:"key"`
	TenantKey  string                 `json:"tenantKey,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data"`
}

func NewDomainEvent(eventType, key, tenantKey string, data map[string]interface{}) DomainEvent {
	return DomainEvent{
		Type:       eventType,
		Key:        key,
		TenantKey:  tenantKey,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}
