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

// TenantRepository implements tenant data operations
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Create(ctx context.Context, tenant *entities.Tenant) error {
	if tenant.ID == uuid.Nil {
		tenant.ID = utils.GenerateUUIDv7()
	}
	now := time.Now().UTC()
	tenant.CreatedAt, tenant.UpdatedAt = now, now
	if tenant.Status == "" {
		tenant.Status = entities.TenantStatusActive
	}
	return translateWriteError(GetDB(ctx, r.db).Create(r.toModel(tenant)).Error)
}

func (r *TenantRepository) GetByKey(ctx context.Context, key string) (*entities.Tenant, error) {
	var m models.Tenant
	if err := GetDB(ctx, r.db).Where("key = ?", key).First(&m).Error; err != nil {
		return nil, translateReadError(err)
	}
	return r.toEntity(&m), nil
}

func (r *TenantRepository) List(ctx context.Context) ([]*entities.Tenant, error) {
	var rows []models.Tenant
	if err := GetDB(ctx, r.db).Order("key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Tenant, 0, len(rows))
	for i := range rows {
		out = append(out, r.toEntity(&rows[i]))
	}
	return out, nil
}

func (r *TenantRepository) Update(ctx context.Context, tenant *entities.Tenant) error {
	tenant.UpdatedAt = time.Now().UTC()
	result := GetDB(ctx, r.db).Model(&models.Tenant{}).Where("key = ?", tenant.Key).Updates(map[string]interface{}{
		"name":              tenant.Name,
		"mode":              string(tenant.Mode),
		"catalog_mode":      string(tenant.CatalogMode),
		"payments_enabled":  tenant.PaymentsEnabled,
		"vendor_onboarding": string(tenant.VendorOnboarding),
		"status":            string(tenant.Status),
		"updated_at":        tenant.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *TenantRepository) toModel(t *entities.Tenant) *models.Tenant {
	return &models.Tenant{
		ID:               t.ID,
		Key:              t.Key,
		Name:             t.Name,
		Mode:             string(t.Mode),
		CatalogMode:      string(t.CatalogMode),
		PaymentsEnabled:  t.PaymentsEnabled,
		VendorOnboarding: string(t.VendorOnboarding),
		Status:           string(t.Status),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func (r *TenantRepository) toEntity(m *models.Tenant) *entities.Tenant {
	return &entities.Tenant{
		ID:               m.ID,
		Key:              m.Key,
		Name:             m.Name,
		Mode:             entities.TenantMode(m.Mode),
		CatalogMode:      entities.CatalogMode(m.CatalogMode),
		PaymentsEnabled:  m.PaymentsEnabled,
		VendorOnboarding: entities.VendorOnboarding(m.VendorOnboarding),
		Status:           entities.TenantStatus(m.Status),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// TenantDomainRepository implements custom domain operations
type TenantDomainRepository struct {
	db *gorm.DB
}

// NewTenantDomainRepository creates a new tenant domain repository
func NewTenantDomainRepository(db *gorm.DB) *TenantDomainRepository {
	return &TenantDomainRepository{db: db}
}

func (r *TenantDomainRepository) Create(ctx context.Context, d *entities.TenantDomain) error {
	if d.ID == uuid.Nil {
		d.ID = utils.GenerateUUIDv7()
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	m := &models.TenantDomain{
		ID:        d.ID,
		TenantKey: d.TenantKey,
		Domain:    d.Domain,
		IsPrimary: d.IsPrimary,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	return translateWriteError(GetDB(ctx, r.db).Create(m).Error)
}

func (r *TenantDomainRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TenantDomain, error) {
	var m models.TenantDomain
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateReadError(err)
	}
	return r.toEntity(&m), nil
}

func (r *TenantDomainRepository) GetByDomain(ctx context.Context, domain string) (*entities.TenantDomain, error) {
	var m models.TenantDomain
	if err := GetDB(ctx, r.db).Where("domain = ?", domain).First(&m).Error; err != nil {
		return nil, translateReadError(err)
	}
	return r.toEntity(&m), nil
}

func (r *TenantDomainRepository) ListByTenant(ctx context.Context, tenantKey string) ([]*entities.TenantDomain, error) {
	var rows []models.TenantDomain
	if err := GetDB(ctx, r.db).Where("tenant_key = ?", tenantKey).Order("is_primary DESC, domain ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.TenantDomain, 0, len(rows))
	for i := range rows {
		out = append(out, r.toEntity(&rows[i]))
	}
	return out, nil
}

func (r *TenantDomainRepository) CountByTenant(ctx context.Context, tenantKey string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.TenantDomain{}).Where("tenant_key = ?", tenantKey).Count(&count).Error
	return count, err
}

// SetPrimary makes id the only primary domain of its tenant
func (r *TenantDomainRepository) SetPrimary(ctx context.Context, tenantKey string, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	now := time.Now().UTC()
	if err := db.Model(&models.TenantDomain{}).
		Where("tenant_key = ? AND id <> ?", tenantKey, id).
		Updates(map[string]interface{}{"is_primary": false, "updated_at": now}).Error; err != nil {
		return err
	}
	result := db.Model(&models.TenantDomain{}).
		Where("tenant_key = ? AND id = ?", tenantKey, id).
		Updates(map[string]interface{}{"is_primary": true, "updated_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *TenantDomainRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Delete(&models.TenantDomain{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *TenantDomainRepository) toEntity(m *models.TenantDomain) *entities.TenantDomain {
	return &entities.TenantDomain{
		ID:        m.ID,
		TenantKey: m.TenantKey,
		Domain:    m.Domain,
		IsPrimary: m.IsPrimary,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
