package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/domain/lifecycle"
	"digimarket.backend/internal/domain/repositories"
	"digimarket.backend/pkg/logger"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
)

// PayoutUsecase computes vendor balances and manages payout requests
type PayoutUsecase struct {
	orderRepo  repositories.OrderRepository
	payoutRepo repositories.PayoutRepository
	uow        repositories.UnitOfWork
	events     EventPublisher
	now        func() time.Time
}

// NewPayoutUsecase creates a new payout usecase
func NewPayoutUsecase(
	orderRepo repositories.OrderRepository,
	payoutRepo repositories.PayoutRepository,
	uow repositories.UnitOfWork,
	events EventPublisher,
) *PayoutUsecase {
	return &PayoutUsecase{
		orderRepo:  orderRepo,
		payoutRepo: payoutRepo,
		uow:        uow,
		events:     events,
		now:        time.Now,
	}
}

// ComputeAvailableBalance returns max(0, earnings - paid - pending) for a vendor.
func (u *PayoutUsecase) ComputeAvailableBalance(ctx context.Context, vendorID uuid.UUID) (entities.Balance, error) {
	earnings, err := u.orderRepo.SumVendorEarnings(ctx, vendorID)
	if err != nil {
		return entities.Balance{}, err
	}
	totals, err := u.payoutRepo.Totals(ctx, vendorID)
	if err != nil {
		return entities.Balance{}, err
	}
	return entities.NewBalance(
		earnings,
		totals.PaidCents,
		totals.PendingCents,
		totals.PendingCount > 0,
	), nil
}

// RequestPayout opens a PENDING payout. An open request wins over an empty
// balance. When a concurrent request slipped past the checks the unique index
// rejects the insert and the existing pending payout is returned.
func (u *PayoutUsecase) RequestPayout(ctx context.Context, vendorID uuid.UUID, input *entities.RequestPayoutInput) (*entities.Payout, error) {
	if _, err := u.payoutRepo.GetPendingByVendor(ctx, vendorID); err == nil {
		return nil, domainerrors.ErrPendingExists
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	balance, err := u.ComputeAvailableBalance(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if balance.AvailableCents <= 0 {
		return nil, domainerrors.ErrNoBalance
	}

	amount := balance.AvailableCents
	if input != nil && input.AmountCents != nil {
		amount = *input.AmountCents
		if amount <= 0 {
			return nil, domainerrors.Validation("Betrag muss größer als 0 sein")
		}
		if amount > balance.AvailableCents {
			return nil, domainerrors.Wrap(domainerrors.ErrNoBalance, "Betrag übersteigt das verfügbare Guthaben")
		}
	}

	payout := &entities.Payout{
		VendorID:    vendorID,
		AmountCents: amount,
		Status:      entities.PayoutStatusPending,
	}
	if input != nil {
		payout.Note = strings.TrimSpace(input.Note)
	}
	if err := u.payoutRepo.Create(ctx, payout); err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			logger.Info(ctx, "Concurrent payout request, returning existing", zap.String("vendor_id", vendorID.String()))
			return u.payoutRepo.GetPendingByVendor(ctx, vendorID)
		}
		return nil, err
	}

	publish(ctx, u.events, entities.NewDomainEvent(entities.EventPayoutRequested, payout.ID.String(), "", map[string]interface{}{
		"payoutId":    payout.ID.String(),
		"vendorId":    vendorID.String(),
		"amountCents": payout.AmountCents,
	}))
	return payout, nil
}

// ListOwn lists a vendor's payouts
func (u *PayoutUsecase) ListOwn(ctx context.Context, vendorID uuid.UUID, pagination utils.PaginationParams) ([]*entities.Payout, int64, error) {
	return u.payoutRepo.ListByVendor(ctx, vendorID, pagination)
}

// List lists payouts for admins, optionally by status
func (u *PayoutUsecase) List(ctx context.Context, status *entities.PayoutStatus, pagination utils.PaginationParams) ([]*entities.Payout, int64, error) {
	return u.payoutRepo.List(ctx, status, pagination)
}

// MarkPaid settles a PENDING payout
func (u *PayoutUsecase) MarkPaid(ctx context.Context, id uuid.UUID, input *entities.PayoutDecisionInput) (*entities.Payout, error) {
	return u.decide(ctx, id, lifecycle.PayoutMarkPaid, input, entities.EventPayoutPaid)
}

// Cancel withdraws a PENDING payout; its amount becomes available again
func (u *PayoutUsecase) Cancel(ctx context.Context, id uuid.UUID, input *entities.PayoutDecisionInput) (*entities.Payout, error) {
	return u.decide(ctx, id, lifecycle.PayoutCancel, input, entities.EventPayoutCancelled)
}

func (u *PayoutUsecase) decide(ctx context.Context, id uuid.UUID, t lifecycle.Transition, input *entities.PayoutDecisionInput, eventType string) (*entities.Payout, error) {
	var (
		payout  *entities.Payout
		changed bool
	)
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		p, err := u.payoutRepo.GetByID(u.uow.WithLock(txCtx), id)
		if err != nil {
			return err
		}
		next, moved, err := lifecycle.Payout(txCtx, p.Status, t)
		if err != nil {
			return err
		}
		payout = p
		if !moved {
			return nil
		}
		changed = true

		now := u.now().UTC()
		p.Status = next
		switch next {
		case entities.PayoutStatusPaid:
			p.PaidAt = null.TimeFrom(now)
		case entities.PayoutStatusCancelled:
			p.CancelledAt = null.TimeFrom(now)
		}
		if input != nil && strings.TrimSpace(input.Note) != "" {
			p.Note = strings.TrimSpace(input.Note)
		}
		return u.payoutRepo.UpdateStatus(txCtx, p)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		publish(ctx, u.events, entities.NewDomainEvent(eventType, payout.ID.String(), "", map[string]interface{}{
			"payoutId":    payout.ID.String(),
			"vendorId":    payout.VendorID.String(),
			"amountCents": payout.AmountCents,
		}))
	}
	return payout, nil
}
