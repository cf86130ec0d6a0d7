package usecases

import (
	"context"
	"time"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/domain/lifecycle"
	"digimarket.backend/internal/domain/repositories"
	"digimarket.backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
)

// FulfillmentUsecase moves orders to PAID and issues their download links.
// It is the only writer of download links.
type FulfillmentUsecase struct {
	orderRepo   repositories.OrderRepository
	linkRepo    repositories.DownloadLinkRepository
	productRepo repositories.ProductRepository
	uow         repositories.UnitOfWork
	events      EventPublisher
	policy      entities.DownloadPolicy
	now         func() time.Time
}

// NewFulfillmentUsecase creates a new fulfillment usecase
func NewFulfillmentUsecase(
	orderRepo repositories.OrderRepository,
	linkRepo repositories.DownloadLinkRepository,
	productRepo repositories.ProductRepository,
	uow repositories.UnitOfWork,
	events EventPublisher,
	policy entities.DownloadPolicy,
) *FulfillmentUsecase {
	if policy.Expiry <= 0 || policy.MaxDownloads <= 0 {
		policy = entities.DefaultDownloadPolicy
	}
	return &FulfillmentUsecase{
		orderRepo:   orderRepo,
		linkRepo:    linkRepo,
		productRepo: productRepo,
		uow:         uow,
		events:      events,
		policy:      policy,
		now:         time.Now,
	}
}

// MarkPaid records a successful payment. Redelivery is safe: an order that is
// already paid keeps its status and its link is upserted again, so file and
// expiry follow the latest confirmation while the download count is kept.
// A late success for a FAILED order revives it.
func (u *FulfillmentUsecase) MarkPaid(ctx context.Context, orderID uuid.UUID, checkoutRef string) (*entities.Order, error) {
	var (
		order   *entities.Order
		changed bool
	)
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		o, err := u.orderRepo.GetByID(u.uow.WithLock(txCtx), orderID)
		if err != nil {
			return err
		}
		if checkoutRef != "" && o.CheckoutRef != checkoutRef {
			return domainerrors.Validation("Checkout-Referenz passt nicht zur Bestellung")
		}
		now := u.now().UTC()

		if o.Status.IsPaid() {
			order = o
			return u.issueLink(txCtx, o, now)
		}

		next, moved, err := lifecycle.Order(txCtx, o.Status, lifecycle.OrderPay)
		if err != nil {
			return err
		}
		changed = moved
		o.Status = next
		if !o.PaidAt.Valid {
			o.PaidAt = null.TimeFrom(now)
		}
		if err := u.orderRepo.UpdateStatus(txCtx, o); err != nil {
			return err
		}
		if !o.VendorEarningsCents.Valid {
			vendor, platform := entities.SplitEarnings(o.AmountCents)
			if err := u.orderRepo.SetEarnings(txCtx, o.ID, vendor, platform); err != nil {
				return err
			}
			o.VendorEarningsCents = null.Int64From(vendor)
			o.PlatformEarningsCents = null.Int64From(platform)
		}
		order = o
		return u.issueLink(txCtx, o, now)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		logger.Info(ctx, "Order paid", zap.String("order_id", order.ID.String()), zap.Int64("amount_cents", order.AmountCents))
		publish(ctx, u.events, entities.NewDomainEvent(entities.EventOrderPaid, order.ID.String(), order.TenantKey, map[string]interface{}{
			"orderId":     order.ID.String(),
			"buyerId":     order.BuyerID.String(),
			"vendorId":    order.VendorID.String(),
			"productId":   order.ProductID.String(),
			"amountCents": order.AmountCents,
		}))
	}
	return order, nil
}

// MarkFailed records a failed payment. Only PENDING orders move to FAILED;
// paid orders are left untouched.
func (u *FulfillmentUsecase) MarkFailed(ctx context.Context, orderID uuid.UUID) (*entities.Order, error) {
	var (
		order   *entities.Order
		changed bool
	)
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		o, err := u.orderRepo.GetByID(u.uow.WithLock(txCtx), orderID)
		if err != nil {
			return err
		}
		order = o
		if o.Status.IsPaid() {
			logger.Warn(txCtx, "Ignoring payment failure for paid order", zap.String("order_id", o.ID.String()))
			return nil
		}
		next, moved, err := lifecycle.Order(txCtx, o.Status, lifecycle.OrderFail)
		if err != nil {
			return err
		}
		if !moved {
			return nil
		}
		o.Status = next
		changed = true
		return u.orderRepo.UpdateStatus(txCtx, o)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		publish(ctx, u.events, entities.NewDomainEvent(entities.EventOrderFailed, order.ID.String(), order.TenantKey, map[string]interface{}{
			"orderId": order.ID.String(),
			"buyerId": order.BuyerID.String(),
		}))
	}
	return order, nil
}

// HandleCheckoutEvent applies a verified provider event. Unknown event types
// are acknowledged and ignored.
func (u *FulfillmentUsecase) HandleCheckoutEvent(ctx context.Context, evt entities.CheckoutEvent) error {
	var err error
	switch evt.Type {
	case entities.CheckoutEventCompleted:
		if vErr := requireEventOrder(evt); vErr != nil {
			return vErr
		}
		_, err = u.MarkPaid(ctx, evt.OrderID, evt.CheckoutRef)
	case entities.CheckoutEventFailed:
		if vErr := requireEventOrder(evt); vErr != nil {
			return vErr
		}
		_, err = u.MarkFailed(ctx, evt.OrderID)
	default:
		logger.Debug(ctx, "Ignoring checkout event", zap.String("type", evt.Type), zap.String("event_id", evt.ID))
	}
	return err
}

func requireEventOrder(evt entities.CheckoutEvent) error {
	if evt.OrderID == uuid.Nil {
		return domainerrors.Validation("Bestellnummer fehlt im Ereignis")
	}
	return nil
}

func (u *FulfillmentUsecase) issueLink(ctx context.Context, o *entities.Order, now time.Time) error {
	product, err := u.productRepo.GetByID(ctx, o.ProductID)
	if err != nil {
		return err
	}
	return u.linkRepo.Upsert(ctx, entities.NewDownloadLink(o.ID, product.FileRef, u.policy, now))
}
