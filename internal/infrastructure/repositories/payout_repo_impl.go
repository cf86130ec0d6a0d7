package repositories

import (
	"context"
	"time"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	domainRepos "digimarket.backend/internal/domain/repositories"
	"digimarket.backend/internal/infrastructure/models"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PayoutRepository implements payout data operations
type PayoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository creates a new payout repository
func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

// Create inserts a payout. The partial unique index on PENDING rows turns a
// concurrent second request into ErrConflict.
func (r *PayoutRepository) Create(ctx context.Context, p *entities.Payout) error {
	if p.ID == uuid.Nil {
		p.ID = utils.GenerateUUIDv7()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	m := &models.Payout{
		ID:          p.ID,
		VendorID:    p.VendorID,
		AmountCents: p.AmountCents,
		Status:      string(p.Status),
		Note:        p.Note,
		PaidAt:      p.PaidAt,
		CancelledAt: p.CancelledAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	return translateWriteError(GetDB(ctx, r.db).Create(m).Error)
}

func (r *PayoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Payout, error) {
	var m models.Payout
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateReadError(err)
	}
	return r.toEntity(&m), nil
}

func (r *PayoutRepository) GetPendingByVendor(ctx context.Context, vendorID uuid.UUID) (*entities.Payout, error) {
	var m models.Payout
	err := GetDB(ctx, r.db).
		Where("vendor_id = ? AND status = ?", vendorID, string(entities.PayoutStatusPending)).
		Order("created_at ASC").
		First(&m).Error
	if err != nil {
		return nil, translateReadError(err)
	}
	return r.toEntity(&m), nil
}

type payoutSum struct {
	Status string
	Total  int64
	Count  int64
}

func (r *PayoutRepository) Totals(ctx context.Context, vendorID uuid.UUID) (domainRepos.PayoutTotals, error) {
	var rows []payoutSum
	err := GetDB(ctx, r.db).Model(&models.Payout{}).
		Select("status, COALESCE(SUM(amount_cents), 0) AS total, COUNT(*) AS count").
		Where("vendor_id = ? AND status IN ?", vendorID, []string{string(entities.PayoutStatusPaid), string(entities.PayoutStatusPending)}).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return domainRepos.PayoutTotals{}, err
	}

	var totals domainRepos.PayoutTotals
	for _, row := range rows {
		switch entities.PayoutStatus(row.Status) {
		case entities.PayoutStatusPaid:
			totals.PaidCents = row.Total
		case entities.PayoutStatusPending:
			totals.PendingCents = row.Total
			totals.PendingCount = row.Count
		}
	}
	return totals, nil
}

func (r *PayoutRepository) UpdateStatus(ctx context.Context, p *entities.Payout) error {
	p.UpdatedAt = time.Now().UTC()
	result := GetDB(ctx, r.db).Model(&models.Payout{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"status":       string(p.Status),
		"note":         p.Note,
		"paid_at":      p.PaidAt,
		"cancelled_at": p.CancelledAt,
		"updated_at":   p.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *PayoutRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, pagination utils.PaginationParams) ([]*entities.Payout, int64, error) {
	return r.list(ctx, GetDB(ctx, r.db).Model(&models.Payout{}).Where("vendor_id = ?", vendorID), pagination)
}

func (r *PayoutRepository) List(ctx context.Context, status *entities.PayoutStatus, pagination utils.PaginationParams) ([]*entities.Payout, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Payout{})
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}
	return r.list(ctx, query, pagination)
}

func (r *PayoutRepository) list(_ context.Context, query *gorm.DB, pagination utils.PaginationParams) ([]*entities.Payout, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Payout
	if err := query.Order("created_at DESC").Limit(pagination.Limit).Offset(pagination.CalculateOffset()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*entities.Payout, 0, len(rows))
	for i := range rows {
		out = append(out, r.toEntity(&rows[i]))
	}
	return out, total, nil
}

func (r *PayoutRepository) toEntity(m *models.Payout) *entities.Payout {
	return &entities.Payout{
		ID:          m.ID,
		VendorID:    m.VendorID,
		AmountCents: m.AmountCents,
		Status:      entities.PayoutStatus(m.Status),
		Note:        m.Note,
		PaidAt:      m.PaidAt,
		CancelledAt: m.CancelledAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
