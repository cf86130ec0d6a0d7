package usecases

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/domain/repositories"
	"digimarket.backend/pkg/logger"
	"digimarket.backend/pkg/sanitize"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductUsecase serves the public catalog and vendor product management.
// Every public read starts from entities.MarketplaceFilter.
type ProductUsecase struct {
	productRepo repositories.ProductRepository
	profileRepo repositories.VendorProfileRepository
	vendors     *VendorUsecase
	files       FileStore
}

// NewProductUsecase creates a new product usecase
func NewProductUsecase(
	productRepo repositories.ProductRepository,
	profileRepo repositories.VendorProfileRepository,
	vendors *VendorUsecase,
	files FileStore,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		profileRepo: profileRepo,
		vendors:     vendors,
		files:       files,
	}
}

// ListMarketplace lists products visible in the tenant's marketplace
func (u *ProductUsecase) ListMarketplace(ctx context.Context, tenantKey, category, search string, pagination utils.PaginationParams) ([]*entities.Product, int64, error) {
	filter := entities.MarketplaceFilter(tenantKey).WithCategory(category).WithSearch(search)
	return u.productRepo.List(ctx, filter, pagination)
}

// GetMarketplaceProduct returns a single visible product. Hidden products are
// reported as not found.
func (u *ProductUsecase) GetMarketplaceProduct(ctx context.Context, tenantKey string, id uuid.UUID) (*entities.Product, error) {
	filter := entities.MarketplaceFilter(tenantKey).WithProduct(id)
	products, _, err := u.productRepo.List(ctx, filter, utils.GetPaginationParams(1, 1))
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, domainerrors.NotFound("Produkt nicht gefunden")
	}
	return products[0], nil
}

// VendorPage returns an approved public vendor with their visible products
func (u *ProductUsecase) VendorPage(ctx context.Context, tenantKey, slug string, pagination utils.PaginationParams) (*entities.PublicVendor, int64, error) {
	profile, err := u.profileRepo.GetBySlug(ctx, tenantKey, utils.Slugify(slug))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, 0, domainerrors.NotFound("Verkäufer nicht gefunden")
		}
		return nil, 0, err
	}
	if !profile.IsApproved() || !profile.IsPublic {
		return nil, 0, domainerrors.NotFound("Verkäufer nicht gefunden")
	}

	filter := entities.MarketplaceFilter(tenantKey).WithVendorProfile(profile.ID)
	products, total, err := u.productRepo.List(ctx, filter, pagination)
	if err != nil {
		return nil, 0, err
	}
	return &entities.PublicVendor{Profile: profile, Products: products}, total, nil
}

// ListOwn lists the caller's products in the tenant in every status
func (u *ProductUsecase) ListOwn(ctx context.Context, tenantKey string, userID uuid.UUID, pagination utils.PaginationParams) ([]*entities.Product, int64, error) {
	filter := entities.ProductFilter{TenantKey: tenantKey, VendorID: &userID}
	return u.productRepo.List(ctx, filter, pagination)
}

// Create stores a new product owned by the caller in the resolved tenant
func (u *ProductUsecase) Create(ctx context.Context, tenant entities.TenantContext, userID uuid.UUID, input *entities.ProductInput) (*entities.Product, error) {
	owner, err := u.vendors.ResolveOwner(ctx, tenant.Key, userID)
	if err != nil {
		return nil, err
	}
	in, err := cleanProductInput(tenant, userID, *input)
	if err != nil {
		return nil, err
	}

	product, err := entities.NewProduct(owner, in)
	if err != nil {
		return nil, err
	}
	if err := u.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update applies vendor input to one of the caller's products
func (u *ProductUsecase) Update(ctx context.Context, tenant entities.TenantContext, userID, productID uuid.UUID, input *entities.ProductInput) (*entities.Product, error) {
	owner, err := u.vendors.ResolveOwner(ctx, tenant.Key, userID)
	if err != nil {
		return nil, err
	}
	in, err := cleanProductInput(tenant, userID, *input)
	if err != nil {
		return nil, err
	}

	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.TenantKey != tenant.Key {
		return nil, domainerrors.NotFound("Produkt nicht gefunden")
	}
	if err := product.ApplyVendorUpdate(owner, in); err != nil {
		return nil, err
	}
	if err := u.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UploadFile stores a product file for the caller and returns its reference
func (u *ProductUsecase) UploadFile(ctx context.Context, tenantKey string, userID uuid.UUID, filename string, r io.Reader) (string, error) {
	if _, err := u.vendors.ResolveOwner(ctx, tenantKey, userID); err != nil {
		return "", err
	}
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", domainerrors.Validation("Dateiname fehlt")
	}

	ref, err := u.files.Save(ctx, userID, name, r)
	if err != nil {
		return "", err
	}
	logger.Info(ctx, "Product file stored", zap.String("vendor_id", userID.String()), zap.String("ref", ref))
	return ref, nil
}

// SetProductStatus blocks or unblocks a product (admin)
func (u *ProductUsecase) SetProductStatus(ctx context.Context, productID uuid.UUID, input *entities.SetProductStatusInput) (*entities.Product, error) {
	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if input.Blocked {
		product.Block()
	} else {
		product.Unblock()
	}
	if err := u.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func cleanProductInput(tenant entities.TenantContext, userID uuid.UUID, in entities.ProductInput) (entities.ProductInput, error) {
	if in.PriceCents != nil && !tenant.AllowsPrice(*in.PriceCents) {
		switch tenant.CatalogMode {
		case entities.CatalogModeFreeOnly:
			return in, domainerrors.Validation("Dieser Marktplatz erlaubt nur kostenlose Produkte")
		case entities.CatalogModePaidOnly:
			return in, domainerrors.Validation("Dieser Marktplatz erlaubt nur kostenpflichtige Produkte")
		default:
			return in, domainerrors.Validation("Preis muss eine nicht-negative ganze Zahl sein")
		}
	}

	var err error
	if in.Title, err = sanitize.Text(in.Title); err != nil {
		return in, domainerrors.Validation("Titel ist ungültig")
	}
	if in.Description, err = sanitize.Text(in.Description); err != nil {
		return in, domainerrors.Validation("Beschreibung ist ungültig")
	}
	if in.ThumbnailURL, err = sanitize.URL(in.ThumbnailURL); err != nil {
		return in, domainerrors.Validation("Vorschaubild-URL ist ungültig")
	}
	in.Category = utils.Slugify(in.Category)
	in.FileRef = strings.TrimSpace(in.FileRef)
	// vendors may only attach files they uploaded themselves
	if in.FileRef != "" && !strings.HasPrefix(in.FileRef, userID.String()+"/") {
		return in, domainerrors.Validation("Datei gehört nicht zu diesem Verkäufer")
	}
	return in, nil
}
