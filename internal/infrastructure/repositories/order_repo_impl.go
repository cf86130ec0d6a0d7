package repositories

import (
	"context"
	"time"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/infrastructure/models"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var paidStatuses = []string{string(entities.OrderStatusPaid), string(entities.OrderStatusCompleted)}

// OrderRepository implements order data operations
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *entities.Order) error {
	if o.ID == uuid.Nil {
		o.ID = utils.GenerateUUIDv7()
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	return translateWriteError(GetDB(ctx, r.db).Create(r.toModel(o)).Error)
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Order, error) {
	var m models.Order
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateReadError(err)
	}
	return r.toEntity(&m), nil
}

// UpdateStatus writes status and paidAt
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *entities.Order) error {
	o.UpdatedAt = time.Now().UTC()
	result := GetDB(ctx, r.db).Model(&models.Order{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"status":     string(o.Status),
		"paid_at":    o.PaidAt,
		"updated_at": o.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, pagination utils.PaginationParams) ([]*entities.Order, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Order{}).Where("buyer_id = ?", buyerID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	if err := query.Order("created_at DESC").Limit(pagination.Limit).Offset(pagination.CalculateOffset()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return r.toEntities(rows), total, nil
}

func (r *OrderRepository) SumVendorEarnings(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&models.Order{}).
		Select("CAST(COALESCE(SUM("+entities.VendorEarningsSQL+"), 0) AS BIGINT)").
		Where("vendor_id = ? AND status IN ?", vendorID, paidStatuses).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *OrderRepository) ListMissingEarnings(ctx context.Context, limit int) ([]*entities.Order, error) {
	var rows []models.Order
	if err := GetDB(ctx, r.db).Where("vendor_earnings_cents IS NULL").Order("created_at ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toEntities(rows), nil
}

// SetEarnings only fills rows whose split is still empty.
func (r *OrderRepository) SetEarnings(ctx context.Context, id uuid.UUID, vendorCents, platformCents int64) error {
	return GetDB(ctx, r.db).Model(&models.Order{}).
		Where("id = ? AND vendor_earnings_cents IS NULL", id).
		Updates(map[string]interface{}{
			"vendor_earnings_cents":   vendorCents,
			"platform_earnings_cents": platformCents,
			"updated_at":              time.Now().UTC(),
		}).Error
}

func (r *OrderRepository) FailStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.Order{}).
		Where("status = ? AND created_at < ?", string(entities.OrderStatusPending), cutoff.UTC()).
		Updates(map[string]interface{}{
			"status":     string(entities.OrderStatusFailed),
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *OrderRepository) toEntities(rows []models.Order) []*entities.Order {
	out := make([]*entities.Order, 0, len(rows))
	for i := range rows {
		out = append(out, r.toEntity(&rows[i]))
	}
	return out
}

func (r *OrderRepository) toModel(o *entities.Order) *models.Order {
	return &models.Order{
		ID:                    o.ID,
		TenantKey:             o.TenantKey,
		BuyerID:               o.BuyerID,
		ProductID:             o.ProductID,
		VendorID:              o.VendorID,
		AmountCents:           o.AmountCents,
		Currency:              o.Currency,
		VendorEarningsCents:   o.VendorEarningsCents,
		PlatformEarningsCents: o.PlatformEarningsCents,
		Status:                string(o.Status),
		CheckoutRef:           o.CheckoutRef,
		PaidAt:                o.PaidAt,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}

func (r *OrderRepository) toEntity(m *models.Order) *entities.Order {
	return &entities.Order{
		ID:                    m.ID,
		TenantKey:             m.TenantKey,
		BuyerID:               m.BuyerID,
		ProductID:             m.ProductID,
		VendorID:              m.VendorID,
		AmountCents:           m.AmountCents,
		Currency:              m.Currency,
		VendorEarningsCents:   m.VendorEarningsCents,
		PlatformEarningsCents: m.PlatformEarningsCents,
		Status:                entities.OrderStatus(m.Status),
		CheckoutRef:           m.CheckoutRef,
		PaidAt:                m.PaidAt,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}
