package entities

import (
	"time"

	domainerrors "digimarket.backend/internal/domain/errors"
	"github.com/google/uuid"
)

// LinkState is derived from a download link's fields
type LinkState string

const (
	LinkStateNoLink       LinkState = "NO_LINK"
	LinkStateActive       LinkState = "ACTIVE"
	LinkStateExpired      LinkState = "EXPIRED"
	LinkStateLimitReached LinkState = "LIMIT_REACHED"
	LinkStateInactive     LinkState = "INACTIVE"
)

// Err maps a non-active state to its domain error
func (s LinkState) Err() error {
	switch s {
	case LinkStateActive:
		return nil
	case LinkStateNoLink:
		return domainerrors.ErrNoLink
	case LinkStateInactive:
		return domainerrors.ErrLinkInactive
	case LinkStateExpired:
		return domainerrors.ErrLinkExpired
	default:
		return domainerrors.ErrLimitReached
	}
}

// DownloadLink grants time and count limited access to an order's file
type DownloadLink struct {
	ID            uuid.UUID `json:"id"`
	OrderID       uuid.UUID `json:"orderId"`
	FileRef       string    `json:"-"`
	ExpiresAt     time.Time `json:"expiresAt"`
	IsActive      bool      `json:"isActive"`
	MaxDownloads  int       `json:"maxDownloads"`
	DownloadCount int       `json:"downloadCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// State classifies the link. Precedence: INACTIVE, EXPIRED, LIMIT_REACHED.
// A link is expired from expiresAt on, matching the atomic increment guard.
func (l *DownloadLink) State(now time.Time) LinkState {
	switch {
	case l == nil:
		return LinkStateNoLink
	case !l.IsActive:
		return LinkStateInactive
	case !now.Before(l.ExpiresAt):
		return LinkStateExpired
	case l.DownloadCount >= l.MaxDownloads:
		return LinkStateLimitReached
	default:
		return LinkStateActive
	}
}

// Remaining returns the number of downloads left, never negative
func (l *DownloadLink) Remaining() int {
	if l == nil || l.DownloadCount >= l.MaxDownloads {
		return 0
	}
	return l.MaxDownloads - l.DownloadCount
}

// DownloadPolicy is applied whenever a link is issued or refreshed
type DownloadPolicy struct {
	Expiry       time.Duration
	MaxDownloads int
}

// DefaultDownloadPolicy is 7 days and 3 downloads
var DefaultDownloadPolicy = DownloadPolicy{Expiry: 7 * 24 * time.Hour, MaxDownloads: 3}

// NewDownloadLink builds a fresh link for an order under policy
func NewDownloadLink(orderID uuid.UUID, fileRef string, policy DownloadPolicy, now time.Time) *DownloadLink {
	return &DownloadLink{
		OrderID:      orderID,
		FileRef:      fileRef,
		ExpiresAt:    now.Add(policy.Expiry),
		IsActive:     true,
		MaxDownloads: policy.MaxDownloads,
	}
}

// DownloadGrant is a successful download attempt
type DownloadGrant struct {
	OrderID       uuid.UUID `json:"orderId"`
	URL           string    `json:"url"`
	URLExpiresAt  time.Time `json:"urlExpiresAt"`
	DownloadsLeft int       `json:"downloadsLeft"`
}
