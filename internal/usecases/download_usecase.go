package usecases

import (
	"context"
	"errors"
	"time"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/domain/lifecycle"
	"digimarket.backend/internal/domain/repositories"
	"digimarket.backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DownloadUsecase decides and records download attempts
type DownloadUsecase struct {
	orderRepo repositories.OrderRepository
	linkRepo  repositories.DownloadLinkRepository
	signer    FileSigner
	now       func() time.Time
}

// NewDownloadUsecase creates a new download usecase
func NewDownloadUsecase(
	orderRepo repositories.OrderRepository,
	linkRepo repositories.DownloadLinkRepository,
	signer FileSigner,
) *DownloadUsecase {
	return &DownloadUsecase{
		orderRepo: orderRepo,
		linkRepo:  linkRepo,
		signer:    signer,
		now:       time.Now,
	}
}

// AttemptDownload checks, in order: requester owns the order (or is admin),
// the order is paid, a link exists, and the link is usable. A usable link is
// consumed with one conditional update; losing a race re-reads the link and
// reports its new state.
func (u *DownloadUsecase) AttemptDownload(ctx context.Context, orderID uuid.UUID, requester entities.Requester) (*entities.DownloadGrant, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != requester.UserID && !requester.IsAdmin() {
		return nil, domainerrors.ErrForbidden
	}
	if !order.Status.IsPaid() {
		return nil, domainerrors.ErrNotPaid
	}

	now := u.now().UTC()
	link, err := u.link(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if state := link.State(now); state != entities.LinkStateActive {
		return nil, state.Err()
	}
	if link.FileRef == "" {
		return nil, domainerrors.NotFound("Für dieses Produkt ist keine Datei hinterlegt")
	}

	consumed, err := u.linkRepo.Consume(ctx, orderID, now)
	if err != nil {
		return nil, err
	}
	if !consumed {
		current, err := u.link(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if state := current.State(now); state != entities.LinkStateActive {
			return nil, state.Err()
		}
		return nil, domainerrors.ErrLimitReached
	}

	if order.Status == entities.OrderStatusPaid {
		u.complete(ctx, order)
	}

	url, expiresAt, err := u.signer.SignedURL(ctx, link.FileRef, now)
	if err != nil {
		return nil, err
	}
	left := link.MaxDownloads - link.DownloadCount - 1
	if left < 0 {
		left = 0
	}
	return &entities.DownloadGrant{
		OrderID:       orderID,
		URL:           url,
		URLExpiresAt:  expiresAt,
		DownloadsLeft: left,
	}, nil
}

func (u *DownloadUsecase) link(ctx context.Context, orderID uuid.UUID) (*entities.DownloadLink, error) {
	link, err := u.linkRepo.GetByOrderID(ctx, orderID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.ErrNoLink
	}
	return link, err
}

// complete moves PAID to COMPLETED after the first download. The download was
// already counted, so failures are logged and not returned.
func (u *DownloadUsecase) complete(ctx context.Context, order *entities.Order) {
	next, changed, err := lifecycle.Order(ctx, order.Status, lifecycle.OrderComplete)
	if err != nil || !changed {
		return
	}
	order.Status = next
	if err := u.orderRepo.UpdateStatus(ctx, order); err != nil {
		logger.Warn(ctx, "Order not marked completed", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
}
