package repositories

import (
	"context"
	"strings"
	"time"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/infrastructure/models"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository implements product data operations
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *entities.Product) error {
	if p.ID == uuid.Nil {
		p.ID = utils.GenerateUUIDv7()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	return translateWriteError(GetDB(ctx, r.db).Create(r.toModel(p)).Error)
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	var m models.Product
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateReadError(err)
	}
	return r.toEntity(&m), nil
}

// Update writes every mutable column; tenant and vendor are never changed.
func (r *ProductRepository) Update(ctx context.Context, p *entities.Product) error {
	p.UpdatedAt = time.Now().UTC()
	result := GetDB(ctx, r.db).Model(&models.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"vendor_profile_id": p.VendorProfileID,
		"title":             p.Title,
		"description":       p.Description,
		"price_cents":       p.PriceCents,
		"category":          p.Category,
		"file_ref":          p.FileRef,
		"thumbnail_url":     p.ThumbnailURL,
		"status":            string(p.Status),
		"is_active":         p.IsActive,
		"updated_at":        p.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List returns products matching filter. With MarketplaceOnly the vendor
// account and profile are INNER JOINed, so products whose vendor or profile
// row is missing never match.
func (r *ProductRepository) List(ctx context.Context, filter entities.ProductFilter, pagination utils.PaginationParams) ([]*entities.Product, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Product{}).Where("products.tenant_key = ?", filter.TenantKey)

	if filter.MarketplaceOnly {
		query = query.
			Joins("INNER JOIN users v ON v.id = products.vendor_id").
			Joins("INNER JOIN vendor_profiles vp ON vp.id = products.vendor_profile_id AND vp.user_id = products.vendor_id AND vp.tenant_key = products.tenant_key").
			Where("products.status = ?", string(entities.ProductStatusActive)).
			Where("products.is_active = ?", true).
			Where("v.is_blocked = ?", false).
			Where("vp.status = ?", string(entities.VendorStatusApproved)).
			Where("vp.is_public = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("products.category = ?", filter.Category)
	}
	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(products.title) LIKE ? OR LOWER(products.description) LIKE ?)", term, term)
	}
	if filter.VendorID != nil {
		query = query.Where("products.vendor_id = ?", *filter.VendorID)
	}
	if filter.VendorProfileID != nil {
		query = query.Where("products.vendor_profile_id = ?", *filter.VendorProfileID)
	}
	if filter.ProductID != nil {
		query = query.Where("products.id = ?", *filter.ProductID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	q := query.Select("products.*").Order("products.created_at DESC")
	if pagination.Limit > 0 {
		q = q.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.Product, 0, len(rows))
	for i := range rows {
		out = append(out, r.toEntity(&rows[i]))
	}
	return out, total, nil
}

func (r *ProductRepository) BlockByVendor(ctx context.Context, tenantKey string, vendorID uuid.UUID) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.Product{}).
		Where("tenant_key = ? AND vendor_id = ?", tenantKey, vendorID).
		Updates(map[string]interface{}{
			"status":     string(entities.ProductStatusBlocked),
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *ProductRepository) toModel(p *entities.Product) *models.Product {
	return &models.Product{
		ID:              p.ID,
		TenantKey:       p.TenantKey,
		VendorID:        p.VendorID,
		VendorProfileID: p.VendorProfileID,
		Title:           p.Title,
		Description:     p.Description,
		PriceCents:      p.PriceCents,
		Category:        p.Category,
		FileRef:         p.FileRef,
		ThumbnailURL:    p.ThumbnailURL,
		Status:          string(p.Status),
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (r *ProductRepository) toEntity(m *models.Product) *entities.Product {
	return &entities.Product{
		ID:              m.ID,
		TenantKey:       m.TenantKey,
		VendorID:        m.VendorID,
		VendorProfileID: m.VendorProfileID,
		Title:           m.Title,
		Description:     m.Description,
		PriceCents:      m.PriceCents,
		Category:        m.Category,
		FileRef:         m.FileRef,
		ThumbnailURL:    m.ThumbnailURL,
		Status:          entities.ProductStatus(m.Status),
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
