package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/domain/repositories"
	"digimarket.backend/pkg/crypto"
	"digimarket.backend/pkg/logger"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderUsecase starts checkouts and serves the buyer's order history
type OrderUsecase struct {
	orderRepo   repositories.OrderRepository
	linkRepo    repositories.DownloadLinkRepository
	productRepo repositories.ProductRepository
	products    *ProductUsecase
	fulfillment *FulfillmentUsecase
	checkout    CheckoutProvider
	currency    string
	now         func() time.Time
}

// NewOrderUsecase creates a new order usecase
func NewOrderUsecase(
	orderRepo repositories.OrderRepository,
	linkRepo repositories.DownloadLinkRepository,
	productRepo repositories.ProductRepository,
	products *ProductUsecase,
	fulfillment *FulfillmentUsecase,
	checkout CheckoutProvider,
	currency string,
) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:   orderRepo,
		linkRepo:    linkRepo,
		productRepo: productRepo,
		products:    products,
		fulfillment: fulfillment,
		checkout:    checkout,
		currency:    strings.ToLower(currency),
		now:         time.Now,
	}
}

// Checkout creates a PENDING order for a marketplace-visible product. Paid
// products return a hosted checkout URL; free products are fulfilled at once.
func (u *OrderUsecase) Checkout(ctx context.Context, tenant entities.TenantContext, buyerID uuid.UUID, input *entities.CheckoutInput) (*entities.CheckoutResult, error) {
	product, err := u.products.GetMarketplaceProduct(ctx, tenant.Key, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsFree() && !tenant.PaymentsEnabled {
		return nil, domainerrors.Forbidden("Zahlungen sind auf diesem Marktplatz deaktiviert")
	}

	ref, err := crypto.CheckoutReference()
	if err != nil {
		return nil, err
	}
	order := newOrder(tenant.Key, buyerID, product, u.currency, ref)
	if err := u.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	if product.IsFree() {
		paid, err := u.fulfillment.MarkPaid(ctx, order.ID, order.CheckoutRef)
		if err != nil {
			return nil, err
		}
		return &entities.CheckoutResult{Order: paid, Fulfilled: true}, nil
	}

	url, err := u.checkout.CreateSession(ctx, order, product)
	if err != nil {
		logger.Error(ctx, "Checkout session failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		if _, failErr := u.fulfillment.MarkFailed(ctx, order.ID); failErr != nil {
			logger.Warn(ctx, "Could not fail order after checkout error", zap.Error(failErr))
		}
		return nil, err
	}
	return &entities.CheckoutResult{Order: order, CheckoutURL: url}, nil
}

// ListOrders returns the buyer's orders with the state of their download links
func (u *OrderUsecase) ListOrders(ctx context.Context, buyerID uuid.UUID, pagination utils.PaginationParams) ([]*entities.OrderView, int64, error) {
	orders, total, err := u.orderRepo.ListByBuyer(ctx, buyerID, pagination)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	links, err := u.linkRepo.ListByOrderIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	now := u.now().UTC()
	titles := make(map[uuid.UUID]string)
	views := make([]*entities.OrderView, 0, len(orders))
	for _, o := range orders {
		title, ok := titles[o.ProductID]
		if !ok {
			title = u.productTitle(ctx, o.ProductID)
			titles[o.ProductID] = title
		}

		view := &entities.OrderView{Order: o, ProductTitle: title, LinkState: entities.LinkStateNoLink}
		if link := links[o.ID]; link != nil && o.Status.IsPaid() {
			view.LinkState = link.State(now)
			if view.LinkState == entities.LinkStateActive {
				view.DownloadsLeft = link.Remaining()
			}
		}
		views = append(views, view)
	}
	return views, total, nil
}

func (u *OrderUsecase) productTitle(ctx context.Context, id uuid.UUID) string {
	p, err := u.productRepo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			logger.Warn(ctx, "Product lookup for order history failed", zap.String("product_id", id.String()), zap.Error(err))
		}
		return ""
	}
	return p.Title
}

func newOrder(tenantKey string, buyerID uuid.UUID, product *entities.Product, currency, ref string) *entities.Order {
	vendor, platform := entities.SplitEarnings(product.PriceCents)
	order := &entities.Order{
		TenantKey:   tenantKey,
		BuyerID:     buyerID,
		ProductID:   product.ID,
		VendorID:    product.VendorID,
		AmountCents: product.PriceCents,
		Currency:    currency,
		Status:      entities.OrderStatusPending,
		CheckoutRef: ref,
	}
	order.VendorEarningsCents.SetValid(vendor)
	order.PlatformEarningsCents.SetValid(platform)
	return order
}
