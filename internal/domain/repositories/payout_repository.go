package repositories

import (
	"context"

	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
)

// PayoutTotals are the payout sums of a vendor in minor units
type PayoutTotals struct {
	PaidCents    int64
	PendingCents int64
	PendingCount int64
}

// PayoutRepository defines payout data operations
type PayoutRepository interface {
	// Create returns ErrConflict when the vendor already has a PENDING payout.
	Create(ctx context.Context, payout *entities.Payout) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Payout, error)
	GetPendingByVendor(ctx context.Context, vendorID uuid.UUID) (*entities.Payout, error)
	Totals(ctx context.Context, vendorID uuid.UUID) (PayoutTotals, error)
	UpdateStatus(ctx context.Context, payout *entities.Payout) error
	ListByVendor(ctx context.Context, vendorID uuid.UUID, pagination utils.PaginationParams) ([]*entities.Payout, int64, error)
	List(ctx context.Context, status *entities.PayoutStatus, pagination utils.PaginationParams) ([]*entities.Payout, int64, error)
}
