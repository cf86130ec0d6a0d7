package repositories

import (
	"context"
	"time"

	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
)

// OrderRepository defines order data operations
type OrderRepository interface {
	Create(ctx context.Context, order *entities.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Order, error)
	UpdateStatus(ctx context.Context, order *entities.Order) error
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, pagination utils.PaginationParams) ([]*entities.Order, int64, error)
	// SumVendorEarnings totals the vendor share of PAID and COMPLETED orders.
	SumVendorEarnings(ctx context.Context, vendorID uuid.UUID) (int64, error)
	ListMissingEarnings(ctx context.Context, limit int) ([]*entities.Order, error)
	SetEarnings(ctx context.Context, id uuid.UUID, vendorCents, platformCents int64) error
	// FailStalePending marks PENDING orders created before cutoff as FAILED.
	FailStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// DownloadLinkRepository defines download link operations
type DownloadLinkRepository interface {
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*entities.DownloadLink, error)
	ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]*entities.DownloadLink, error)
	// Upsert creates the link of an order or refreshes its file, expiry and
	// active flag. The download count is never reset.
	Upsert(ctx context.Context, link *entities.DownloadLink) error
	// Consume atomically increments the count of an active, unexpired link
	// below its limit and reports whether a row was updated.
	Consume(ctx context.Context, orderID uuid.UUID, now time.Time) (bool, error)
}
