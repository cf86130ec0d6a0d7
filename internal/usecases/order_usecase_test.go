package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/usecases"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	orders   *MockOrderRepository
	links    *MockDownloadLinkRepository
	products *MockProductRepository
	checkout *MockCheckoutProvider
	events   *MockEventPublisher
	uc       *usecases.OrderUsecase
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:   new(MockOrderRepository),
		links:    new(MockDownloadLinkRepository),
		products: new(MockProductRepository),
		checkout: new(MockCheckoutProvider),
		events:   new(MockEventPublisher),
	}
	profiles := new(MockVendorProfileRepository)
	vendors := usecases.NewVendorUsecase(profiles, new(MockUserRepository), f.products, newUoW(), f.events)
	catalog := usecases.NewProductUsecase(f.products, profiles, vendors, new(MockFileStore))
	fulfillment := usecases.NewFulfillmentUsecase(f.orders, f.links, f.products, newUoW(), f.events, entities.DefaultDownloadPolicy)
	f.uc = usecases.NewOrderUsecase(f.orders, f.links, f.products, catalog, fulfillment, f.checkout, "EUR")
	return f
}

func (f *orderFixture) visible(p *entities.Product) {
	f.products.On("List", mock.Anything, mock.MatchedBy(func(filter entities.ProductFilter) bool {
		return filter.MarketplaceOnly && filter.ProductID != nil && *filter.ProductID == p.ID
	}), mock.Anything).Return([]*entities.Product{p}, int64(1), nil)
	f.products.On("GetByID", mock.Anything, p.ID).Return(p, nil)
}

func TestOrderUsecase_Checkout_PaidProduct(t *testing.T) {
	f := newOrderFixture()
	buyer := uuid.New()
	product := &entities.Product{ID: uuid.New(), VendorID: uuid.New(), PriceCents: 1250, Status: entities.ProductStatusActive, IsActive: true}
	f.visible(product)

	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o *entities.Order) bool {
		return o.Status == entities.OrderStatusPending && o.BuyerID == buyer && o.VendorID == product.VendorID &&
			o.AmountCents == 1250 && o.Currency == "eur" &&
			o.VendorEarningsCents.Int64 == 1000 && o.PlatformEarningsCents.Int64 == 250 &&
			len(o.CheckoutRef) > len("chk_")
	})).Return(nil).Once()
	f.checkout.On("CreateSession", mock.Anything, mock.Anything, product).Return("https://pay.test/s/1", nil).Once()

	tenant := entities.TenantContext{Key: "default", PaymentsEnabled: true}
	res, err := f.uc.Checkout(context.Background(), tenant, buyer, &entities.CheckoutInput{ProductID: product.ID})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/s/1", res.CheckoutURL)
	assert.False(t, res.Fulfilled)
	f.orders.AssertExpectations(t)
	f.links.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestOrderUsecase_Checkout_FreeProductFulfilledImmediately(t *testing.T) {
	f := newOrderFixture()
	product := &entities.Product{ID: uuid.New(), VendorID: uuid.New(), PriceCents: 0, FileRef: "v/free.zip"}
	f.visible(product)

	var created *entities.Order
	f.orders.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*entities.Order)
		created.ID = uuid.New()
	}).Return(nil).Once()
	f.orders.On("GetByID", mock.Anything, mock.Anything).Return(func(_ context.Context, _ uuid.UUID) *entities.Order { return created }, nil)
	f.orders.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil).Once()
	f.links.On("Upsert", mock.Anything, mock.MatchedBy(func(l *entities.DownloadLink) bool { return l.FileRef == "v/free.zip" })).Return(nil).Once()
	f.events.On("Publish", mock.Anything, eventOfType(entities.EventOrderPaid)).Return(nil).Once()

	// payments disabled does not block free claims
	res, err := f.uc.Checkout(context.Background(), entities.TenantContext{Key: "default"}, uuid.New(), &entities.CheckoutInput{ProductID: product.ID})
	require.NoError(t, err)
	assert.True(t, res.Fulfilled)
	assert.Empty(t, res.CheckoutURL)
	assert.Equal(t, entities.OrderStatusPaid, res.Order.Status)
	f.checkout.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
	f.links.AssertExpectations(t)
}

func TestOrderUsecase_Checkout_Rejections(t *testing.T) {
	t.Run("payments disabled", func(t *testing.T) {
		f := newOrderFixture()
		product := &entities.Product{ID: uuid.New(), PriceCents: 500}
		f.visible(product)

		_, err := f.uc.Checkout(context.Background(), entities.TenantContext{Key: "default"}, uuid.New(), &entities.CheckoutInput{ProductID: product.ID})
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("not visible", func(t *testing.T) {
		f := newOrderFixture()
		f.products.On("List", mock.Anything, mock.Anything, mock.Anything).Return([]*entities.Product{}, int64(0), nil)

		_, err := f.uc.Checkout(context.Background(), entities.TenantContext{Key: "default", PaymentsEnabled: true}, uuid.New(), &entities.CheckoutInput{ProductID: uuid.New()})
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	})

	t.Run("provider error fails the order", func(t *testing.T) {
		f := newOrderFixture()
		product := &entities.Product{ID: uuid.New(), PriceCents: 500}
		f.visible(product)
		var created *entities.Order
		f.orders.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			created = args.Get(1).(*entities.Order)
			created.ID = uuid.New()
		}).Return(nil)
		f.checkout.On("CreateSession", mock.Anything, mock.Anything, product).Return("", errors.New("provider down"))
		f.orders.On("GetByID", mock.Anything, mock.Anything).Return(func(_ context.Context, _ uuid.UUID) *entities.Order { return created }, nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil).Once()
		f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

		_, err := f.uc.Checkout(context.Background(), entities.TenantContext{Key: "default", PaymentsEnabled: true}, uuid.New(), &entities.CheckoutInput{ProductID: product.ID})
		assert.EqualError(t, err, "provider down")
		assert.Equal(t, entities.OrderStatusFailed, created.Status)
	})
}

func TestOrderUsecase_ListOrders_WithLinkStates(t *testing.T) {
	f := newOrderFixture()
	buyer := uuid.New()
	productID := uuid.New()
	paid := &entities.Order{ID: uuid.New(), BuyerID: buyer, ProductID: productID, Status: entities.OrderStatusPaid}
	used := &entities.Order{ID: uuid.New(), BuyerID: buyer, ProductID: productID, Status: entities.OrderStatusCompleted}
	pending := &entities.Order{ID: uuid.New(), BuyerID: buyer, ProductID: productID, Status: entities.OrderStatusPending}
	pagination := utils.GetPaginationParams(1, 10)

	f.orders.On("ListByBuyer", mock.Anything, buyer, pagination).Return([]*entities.Order{paid, used, pending}, int64(3), nil)
	f.links.On("ListByOrderIDs", mock.Anything, []uuid.UUID{paid.ID, used.ID, pending.ID}).Return(map[uuid.UUID]*entities.DownloadLink{
		paid.ID: {OrderID: paid.ID, IsActive: true, ExpiresAt: time.Now().Add(time.Hour), MaxDownloads: 3, DownloadCount: 1},
		used.ID: {OrderID: used.ID, IsActive: true, ExpiresAt: time.Now().Add(time.Hour), MaxDownloads: 3, DownloadCount: 3},
	}, nil)
	f.products.On("GetByID", mock.Anything, productID).Return(&entities.Product{ID: productID, Title: "Icons"}, nil).Once()

	views, total, err := f.uc.ListOrders(context.Background(), buyer, pagination)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, views, 3)
	assert.Equal(t, entities.LinkStateActive, views[0].LinkState)
	assert.Equal(t, 2, views[0].DownloadsLeft)
	assert.Equal(t, "Icons", views[0].ProductTitle)
	assert.Equal(t, entities.LinkStateLimitReached, views[1].LinkState)
	assert.Equal(t, entities.LinkStateNoLink, views[2].LinkState)
	f.products.AssertExpectations(t)
}
