package repositories

import (
	"context"

	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
)

// ProductRepository defines product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entities.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Product, error)
	Update(ctx context.Context, product *entities.Product) error
	// List applies filter; MarketplaceOnly adds the vendor and profile joins.
	List(ctx context.Context, filter entities.ProductFilter, pagination utils.PaginationParams) ([]*entities.Product, int64, error)
	// BlockByVendor suspends every product of a vendor within a tenant.
	BlockByVendor(ctx context.Context, tenantKey string, vendorID uuid.UUID) (int64, error)
}
