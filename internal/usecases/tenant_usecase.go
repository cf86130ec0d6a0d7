package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/domain/repositories"
	"digimarket.backend/pkg/logger"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantUsecase resolves request hosts to tenants and administers tenants
// and their custom domains.
type TenantUsecase struct {
	tenantRepo  repositories.TenantRepository
	domainRepo  repositories.TenantDomainRepository
	uow         repositories.UnitOfWork
	cache       TenantCache
	defaultKey  string
	devHostname string
}

// NewTenantUsecase creates a new tenant usecase
func NewTenantUsecase(
	tenantRepo repositories.TenantRepository,
	domainRepo repositories.TenantDomainRepository,
	uow repositories.UnitOfWork,
	cache TenantCache,
	defaultKey string,
	devHostname string,
) *TenantUsecase {
	return &TenantUsecase{
		tenantRepo:  tenantRepo,
		domainRepo:  domainRepo,
		uow:         uow,
		cache:       cache,
		defaultKey:  defaultKey,
		devHostname: entities.NormalizeHost(devHostname),
	}
}

// ResolveTenant maps a raw Host header to a tenant. Unknown, empty or
// malformed hosts and domain lookup failures all resolve to the default
// tenant; the only error is a missing default tenant.
func (u *TenantUsecase) ResolveTenant(ctx context.Context, host string) (entities.TenantContext, error) {
	normalized := entities.NormalizeHost(host)
	if tc, ok := u.cache.Get(ctx, normalized); ok {
		return tc, nil
	}

	if normalized != "" && normalized != u.devHostname {
		if tc, ok := u.resolveDomain(ctx, normalized); ok {
			u.cache.Set(ctx, normalized, tc)
			return tc, nil
		}
	}

	tc, err := u.defaultTenant(ctx)
	if err != nil {
		return entities.TenantContext{}, err
	}
	u.cache.Set(ctx, normalized, tc)
	return tc, nil
}

func (u *TenantUsecase) resolveDomain(ctx context.Context, host string) (entities.TenantContext, bool) {
	domain, err := u.domainRepo.GetByDomain(ctx, host)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			logger.Warn(ctx, "Tenant domain lookup failed, using default tenant", zap.String("host", host), zap.Error(err))
		}
		return entities.TenantContext{}, false
	}
	tenant, err := u.tenantRepo.GetByKey(ctx, domain.TenantKey)
	if err != nil {
		logger.Warn(ctx, "Tenant of domain not loadable, using default tenant", zap.String("host", host), zap.Error(err))
		return entities.TenantContext{}, false
	}
	if tenant.Status != entities.TenantStatusActive {
		return entities.TenantContext{}, false
	}
	return entities.ContextFromTenant(tenant, tenant.Key == u.defaultKey), true
}

func (u *TenantUsecase) defaultTenant(ctx context.Context) (entities.TenantContext, error) {
	tenant, err := u.tenantRepo.GetByKey(ctx, u.defaultKey)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return entities.TenantContext{}, domainerrors.ErrDefaultTenantMissing
		}
		return entities.TenantContext{}, fmt.Errorf("load default tenant: %w", err)
	}
	return entities.ContextFromTenant(tenant, true), nil
}

// ListTenants returns every tenant
func (u *TenantUsecase) ListTenants(ctx context.Context) ([]*entities.Tenant, error) {
	return u.tenantRepo.List(ctx)
}

// GetTenant returns one tenant by key
func (u *TenantUsecase) GetTenant(ctx context.Context, key string) (*entities.Tenant, error) {
	return u.tenantRepo.GetByKey(ctx, key)
}

// CreateTenant creates a tenant; the key is normalized to a slug.
func (u *TenantUsecase) CreateTenant(ctx context.Context, input *entities.CreateTenantInput) (*entities.Tenant, error) {
	key := utils.Slugify(input.Key)
	if key == "" {
		return nil, domainerrors.Validation("Ungültiger Mandanten-Schlüssel")
	}
	tenant := &entities.Tenant{
		Key:              key,
		Name:             strings.TrimSpace(input.Name),
		Mode:             input.Mode,
		CatalogMode:      input.CatalogMode,
		PaymentsEnabled:  input.PaymentsEnabled,
		VendorOnboarding: input.VendorOnboarding,
		Status:           entities.TenantStatusActive,
	}
	if tenant.Mode == "" {
		tenant.Mode = entities.TenantModeMarketplace
	}
	if tenant.CatalogMode == "" {
		tenant.CatalogMode = entities.CatalogModeMixed
	}
	if tenant.VendorOnboarding == "" {
		tenant.VendorOnboarding = entities.VendorOnboardingOpen
	}

	if err := u.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	u.cache.InvalidateAll(ctx)
	return tenant, nil
}

// UpdateTenant applies a partial update. The default tenant cannot be archived.
func (u *TenantUsecase) UpdateTenant(ctx context.Context, key string, input *entities.UpdateTenantInput) (*entities.Tenant, error) {
	tenant, err := u.tenantRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		tenant.Name = strings.TrimSpace(*input.Name)
	}
	if input.Mode != nil {
		tenant.Mode = *input.Mode
	}
	if input.CatalogMode != nil {
		tenant.CatalogMode = *input.CatalogMode
	}
	if input.PaymentsEnabled != nil {
		tenant.PaymentsEnabled = *input.PaymentsEnabled
	}
	if input.VendorOnboarding != nil {
		tenant.VendorOnboarding = *input.VendorOnboarding
	}
	if input.Status != nil {
		if tenant.Key == u.defaultKey && *input.Status != entities.TenantStatusActive {
			return nil, domainerrors.Validation("Der Standard-Mandant kann nicht archiviert werden")
		}
		tenant.Status = *input.Status
	}

	if err := u.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	u.cache.InvalidateAll(ctx)
	return tenant, nil
}

// ListDomains returns the custom domains of a tenant
func (u *TenantUsecase) ListDomains(ctx context.Context, key string) ([]*entities.TenantDomain, error) {
	if _, err := u.tenantRepo.GetByKey(ctx, key); err != nil {
		return nil, err
	}
	return u.domainRepo.ListByTenant(ctx, key)
}

// AddDomain binds a normalized host to a tenant. Hosts are globally unique;
// the first domain of a tenant is always primary.
func (u *TenantUsecase) AddDomain(ctx context.Context, key string, input *entities.AddDomainInput) (*entities.TenantDomain, error) {
	host := entities.NormalizeHost(input.Domain)
	if host == "" || strings.ContainsAny(host, "/ ") || (!strings.Contains(host, ".") && host != "localhost") {
		return nil, domainerrors.Validation("Ungültige Domain")
	}
	if host == u.devHostname {
		return nil, domainerrors.Validation("Die Entwicklungs-Domain ist reserviert")
	}

	var created *entities.TenantDomain
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := u.tenantRepo.GetByKey(txCtx, key); err != nil {
			return err
		}
		count, err := u.domainRepo.CountByTenant(txCtx, key)
		if err != nil {
			return err
		}
		domain := &entities.TenantDomain{
			TenantKey: key,
			Domain:    host,
			IsPrimary: input.IsPrimary || count == 0,
		}
		if err := u.domainRepo.Create(txCtx, domain); err != nil {
			if errors.Is(err, domainerrors.ErrConflict) {
				return domainerrors.Conflict("Domain ist bereits vergeben")
			}
			return err
		}
		if domain.IsPrimary && count > 0 {
			if err := u.domainRepo.SetPrimary(txCtx, key, domain.ID); err != nil {
				return err
			}
		}
		created = domain
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.cache.InvalidateAll(ctx)
	return created, nil
}

// RemoveDomain unbinds a domain. When the primary domain goes, the next
// remaining domain becomes primary.
func (u *TenantUsecase) RemoveDomain(ctx context.Context, key string, id uuid.UUID) error {
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		domain, err := u.domainRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if domain.TenantKey != key {
			return domainerrors.ErrNotFound
		}
		if err := u.domainRepo.Delete(txCtx, id); err != nil {
			return err
		}
		if !domain.IsPrimary {
			return nil
		}
		rest, err := u.domainRepo.ListByTenant(txCtx, key)
		if err != nil {
			return err
		}
		if len(rest) == 0 {
			return nil
		}
		return u.domainRepo.SetPrimary(txCtx, key, rest[0].ID)
	})
	if err != nil {
		return err
	}
	u.cache.InvalidateAll(ctx)
	return nil
}

// SetPrimaryDomain makes id the only primary domain of the tenant
func (u *TenantUsecase) SetPrimaryDomain(ctx context.Context, key string, id uuid.UUID) error {
	domain, err := u.domainRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if domain.TenantKey != key {
		return domainerrors.ErrNotFound
	}
	if err := u.domainRepo.SetPrimary(ctx, key, id); err != nil {
		return err
	}
	u.cache.InvalidateAll(ctx)
	return nil
}
