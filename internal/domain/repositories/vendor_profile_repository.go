package repositories

import (
	"context"

	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
)

// VendorProfileRepository defines vendor profile operations
type VendorProfileRepository interface {
	Create(ctx context.Context, profile *entities.VendorProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.VendorProfile, error)
	GetByTenantAndUser(ctx context.Context, tenantKey string, userID uuid.UUID) (*entities.VendorProfile, error)
	GetBySlug(ctx context.Context, tenantKey, slug string) (*entities.VendorProfile, error)
	SlugTaken(ctx context.Context, tenantKey, slug string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, profile *entities.VendorProfile) error
	List(ctx context.Context, tenantKey string, status *entities.VendorStatus, pagination utils.PaginationParams) ([]*entities.VendorProfile, int64, error)
}
