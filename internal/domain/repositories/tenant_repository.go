package repositories

import (
	"context"

	"digimarket.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// TenantRepository defines tenant data operations
type TenantRepository interface {
	Create(ctx context.Context, tenant *entities.Tenant) error
	GetByKey(ctx context.Context, key string) (*entities.Tenant, error)
	List(ctx context.Context) ([]*entities.Tenant, error)
	Update(ctx context.Context, tenant *entities.Tenant) error
}

// TenantDomainRepository defines custom domain operations
type TenantDomainRepository interface {
	Create(ctx context.Context, domain *entities.TenantDomain) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TenantDomain, error)
	GetByDomain(ctx context.Context, domain string) (*entities.TenantDomain, error)
	ListByTenant(ctx context.Context, tenantKey string) ([]*entities.TenantDomain, error)
	CountByTenant(ctx context.Context, tenantKey string) (int64, error)
	SetPrimary(ctx context.Context, tenantKey string, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
