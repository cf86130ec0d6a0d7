package usecases_test

import (
	"context"
	"io"
	"time"

	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/internal/domain/repositories"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	args := m.Called(ctx)
	return args.Get(0).(context.Context)
}

// newUoW returns a unit of work that runs every callback inline.
func newUoW() *MockUnitOfWork {
	uow := new(MockUnitOfWork)
	uow.On("Do", mock.Anything, mock.Anything).Return(nil)
	uow.On("WithLock", mock.Anything).Return(context.Background())
	return uow
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role entities.UserRole) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockUserRepository) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	args := m.Called(ctx, id, blocked)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, search string, pagination utils.PaginationParams) ([]*entities.User, int64, error) {
	args := m.Called(ctx, search, pagination)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.User), args.Get(1).(int64), args.Error(2)
}

// Mock TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *entities.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByKey(ctx context.Context, key string) (*entities.Tenant, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tenant), args.Error(1)
}

func (m *MockTenantRepository) List(ctx context.Context) ([]*entities.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *entities.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

// Mock TenantDomainRepository
type MockTenantDomainRepository struct {
	mock.Mock
}

func (m *MockTenantDomainRepository) Create(ctx context.Context, domain *entities.TenantDomain) error {
	args := m.Called(ctx, domain)
	return args.Error(0)
}

func (m *MockTenantDomainRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TenantDomain, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TenantDomain), args.Error(1)
}

func (m *MockTenantDomainRepository) GetByDomain(ctx context.Context, domain string) (*entities.TenantDomain, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TenantDomain), args.Error(1)
}

func (m *MockTenantDomainRepository) ListByTenant(ctx context.Context, tenantKey string) ([]*entities.TenantDomain, error) {
	args := m.Called(ctx, tenantKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TenantDomain), args.Error(1)
}

func (m *MockTenantDomainRepository) CountByTenant(ctx context.Context, tenantKey string) (int64, error) {
	args := m.Called(ctx, tenantKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTenantDomainRepository) SetPrimary(ctx context.Context, tenantKey string, id uuid.UUID) error {
	args := m.Called(ctx, tenantKey, id)
	return args.Error(0)
}

func (m *MockTenantDomainRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock VendorProfileRepository
type MockVendorProfileRepository struct {
	mock.Mock
}

func (m *MockVendorProfileRepository) Create(ctx context.Context, profile *entities.VendorProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockVendorProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.VendorProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VendorProfile), args.Error(1)
}

func (m *MockVendorProfileRepository) GetByTenantAndUser(ctx context.Context, tenantKey string, userID uuid.UUID) (*entities.VendorProfile, error) {
	args := m.Called(ctx, tenantKey, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VendorProfile), args.Error(1)
}

func (m *MockVendorProfileRepository) GetBySlug(ctx context.Context, tenantKey, slug string) (*entities.VendorProfile, error) {
	args := m.Called(ctx, tenantKey, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VendorProfile), args.Error(1)
}

func (m *MockVendorProfileRepository) SlugTaken(ctx context.Context, tenantKey, slug string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantKey, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVendorProfileRepository) Update(ctx context.Context, profile *entities.VendorProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockVendorProfileRepository) List(ctx context.Context, tenantKey string, status *entities.VendorStatus, pagination utils.PaginationParams) ([]*entities.VendorProfile, int64, error) {
	args := m.Called(ctx, tenantKey, status, pagination)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.VendorProfile), args.Get(1).(int64), args.Error(2)
}

// Mock ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *entities.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *entities.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, filter entities.ProductFilter, pagination utils.PaginationParams) ([]*entities.Product, int64, error) {
	args := m.Called(ctx, filter, pagination)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) BlockByVendor(ctx context.Context, tenantKey string, vendorID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantKey, vendorID)
	return args.Get(0).(int64), args.Error(1)
}

// Mock OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *entities.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Order, error) {
	args := m.Called(ctx, id)
	if fn, ok := args.Get(0).(func(context.Context, uuid.UUID) *entities.Order); ok {
		return fn(ctx, id), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, order *entities.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, pagination utils.PaginationParams) ([]*entities.Order, int64, error) {
	args := m.Called(ctx, buyerID, pagination)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) SumVendorEarnings(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	args := m.Called(ctx, vendorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ListMissingEarnings(ctx context.Context, limit int) ([]*entities.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Order), args.Error(1)
}

func (m *MockOrderRepository) SetEarnings(ctx context.Context, id uuid.UUID, vendorCents, platformCents int64) error {
	args := m.Called(ctx, id, vendorCents, platformCents)
	return args.Error(0)
}

func (m *MockOrderRepository) FailStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// Mock DownloadLinkRepository
type MockDownloadLinkRepository struct {
	mock.Mock
}

func (m *MockDownloadLinkRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*entities.DownloadLink, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DownloadLink), args.Error(1)
}

func (m *MockDownloadLinkRepository) ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]*entities.DownloadLink, error) {
	args := m.Called(ctx, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*entities.DownloadLink), args.Error(1)
}

func (m *MockDownloadLinkRepository) Upsert(ctx context.Context, link *entities.DownloadLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockDownloadLinkRepository) Consume(ctx context.Context, orderID uuid.UUID, now time.Time) (bool, error) {
	args := m.Called(ctx, orderID, now)
	return args.Bool(0), args.Error(1)
}

// Mock PayoutRepository
type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) Create(ctx context.Context, payout *entities.Payout) error {
	args := m.Called(ctx, payout)
	return args.Error(0)
}

func (m *MockPayoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payout), args.Error(1)
}

func (m *MockPayoutRepository) GetPendingByVendor(ctx context.Context, vendorID uuid.UUID) (*entities.Payout, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payout), args.Error(1)
}

func (m *MockPayoutRepository) Totals(ctx context.Context, vendorID uuid.UUID) (repositories.PayoutTotals, error) {
	args := m.Called(ctx, vendorID)
	return args.Get(0).(repositories.PayoutTotals), args.Error(1)
}

func (m *MockPayoutRepository) UpdateStatus(ctx context.Context, payout *entities.Payout) error {
	args := m.Called(ctx, payout)
	return args.Error(0)
}

func (m *MockPayoutRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, pagination utils.PaginationParams) ([]*entities.Payout, int64, error) {
	args := m.Called(ctx, vendorID, pagination)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Payout), args.Get(1).(int64), args.Error(2)
}

func (m *MockPayoutRepository) List(ctx context.Context, status *entities.PayoutStatus, pagination utils.PaginationParams) ([]*entities.Payout, int64, error) {
	args := m.Called(ctx, status, pagination)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Payout), args.Get(1).(int64), args.Error(2)
}

// Mock TenantCache
type MockTenantCache struct {
	mock.Mock
}

func (m *MockTenantCache) Get(ctx context.Context, host string) (entities.TenantContext, bool) {
	args := m.Called(ctx, host)
	return args.Get(0).(entities.TenantContext), args.Bool(1)
}

func (m *MockTenantCache) Set(ctx context.Context, host string, tenant entities.TenantContext) {
	m.Called(ctx, host, tenant)
}

func (m *MockTenantCache) InvalidateAll(ctx context.Context) {
	m.Called(ctx)
}

// Mock EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, evt entities.DomainEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

// Mock CheckoutProvider
type MockCheckoutProvider struct {
	mock.Mock
}

func (m *MockCheckoutProvider) CreateSession(ctx context.Context, order *entities.Order, product *entities.Product) (string, error) {
	args := m.Called(ctx, order, product)
	return args.String(0), args.Error(1)
}

// Mock FileSigner
type MockFileSigner struct {
	mock.Mock
}

func (m *MockFileSigner) SignedURL(ctx context.Context, ref string, now time.Time) (string, time.Time, error) {
	args := m.Called(ctx, ref, now)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// Mock FileStore
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Save(ctx context.Context, ownerID uuid.UUID, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, ownerID, filename, r)
	return args.String(0), args.Error(1)
}

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(evt entities.DomainEvent) bool { return evt.Type == eventType })
}
