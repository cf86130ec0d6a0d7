package repositories

import (
	"context"
	"encoding/json"
	"time"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/infrastructure/models"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

// VendorProfileRepository implements vendor profile operations
type VendorProfileRepository struct {
	db *gorm.DB
}

// NewVendorProfileRepository creates a new vendor profile repository
func NewVendorProfileRepository(db *gorm.DB) *VendorProfileRepository {
	return &VendorProfileRepository{db: db}
}

func (r *VendorProfileRepository) Create(ctx context.Context, p *entities.VendorProfile) error {
	if p.ID == uuid.Nil {
		p.ID = utils.GenerateUUIDv7()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	m, err := r.toModel(p)
	if err != nil {
		return err
	}
	return translateWriteError(GetDB(ctx, r.db).Create(m).Error)
}

func (r *VendorProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.VendorProfile, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *VendorProfileRepository) GetByTenantAndUser(ctx context.Context, tenantKey string, userID uuid.UUID) (*entities.VendorProfile, error) {
	return r.first(ctx, "tenant_key = ? AND user_id = ?", tenantKey, userID)
}

func (r *VendorProfileRepository) GetBySlug(ctx context.Context, tenantKey, slug string) (*entities.VendorProfile, error) {
	return r.first(ctx, "tenant_key = ? AND slug = ?", tenantKey, slug)
}

func (r *VendorProfileRepository) first(ctx context.Context, query string, args ...interface{}) (*entities.VendorProfile, error) {
	var m models.VendorProfile
	if err := GetDB(ctx, r.db).Where(query, args...).First(&m).Error; err != nil {
		return nil, translateReadError(err)
	}
	return r.toEntity(&m), nil
}

func (r *VendorProfileRepository) SlugTaken(ctx context.Context, tenantKey, slug string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.VendorProfile{}).
		Where("tenant_key = ? AND slug = ? AND id <> ?", tenantKey, slug, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *VendorProfileRepository) Update(ctx context.Context, p *entities.VendorProfile) error {
	p.UpdatedAt = time.Now().UTC()
	m, err := r.toModel(p)
	if err != nil {
		return err
	}
	result := GetDB(ctx, r.db).Model(&models.VendorProfile{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"status":       m.Status,
		"is_public":    m.IsPublic,
		"display_name": m.DisplayName,
		"bio":          m.Bio,
		"avatar_url":   m.AvatarURL,
		"social_links": m.SocialLinks,
		"slug":         m.Slug,
		"approved_at":  m.ApprovedAt,
		"updated_at":   m.UpdatedAt,
	})
	if result.Error != nil {
		return translateWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *VendorProfileRepository) List(ctx context.Context, tenantKey string, status *entities.VendorStatus, pagination utils.PaginationParams) ([]*entities.VendorProfile, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.VendorProfile{}).Where("tenant_key = ?", tenantKey)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.VendorProfile
	if err := query.Order("created_at DESC").Limit(pagination.Limit).Offset(pagination.CalculateOffset()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*entities.VendorProfile, 0, len(rows))
	for i := range rows {
		out = append(out, r.toEntity(&rows[i]))
	}
	return out, total, nil
}

func (r *VendorProfileRepository) toModel(p *entities.VendorProfile) (*models.VendorProfile, error) {
	links := null.JSON{}
	if len(p.SocialLinks) > 0 {
		raw, err := json.Marshal(p.SocialLinks)
		if err != nil {
			return nil, err
		}
		links = null.JSONFrom(raw)
	}
	return &models.VendorProfile{
		ID:          p.ID,
		TenantKey:   p.TenantKey,
		UserID:      p.UserID,
		Status:      string(p.Status),
		IsPublic:    p.IsPublic,
		DisplayName: p.DisplayName,
		Bio:         p.Bio,
		AvatarURL:   p.AvatarURL,
		SocialLinks: links,
		Slug:        p.Slug,
		ApprovedAt:  p.ApprovedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (r *VendorProfileRepository) toEntity(m *models.VendorProfile) *entities.VendorProfile {
	var links map[string]string
	if m.SocialLinks.Valid {
		// a malformed column is treated as empty
		_ = m.SocialLinks.Unmarshal(&links)
	}
	return &entities.VendorProfile{
		ID:          m.ID,
		TenantKey:   m.TenantKey,
		UserID:      m.UserID,
		Status:      entities.VendorStatus(m.Status),
		IsPublic:    m.IsPublic,
		DisplayName: m.DisplayName,
		Bio:         m.Bio,
		AvatarURL:   m.AvatarURL,
		SocialLinks: links,
		Slug:        m.Slug,
		ApprovedAt:  m.ApprovedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
