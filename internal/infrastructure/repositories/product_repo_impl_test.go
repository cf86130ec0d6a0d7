package repositories

import (
	"context"
	"testing"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func marketIDs(t *testing.T, db *gorm.DB, filter entities.ProductFilter) []uuid.UUID {
	t.Helper()
	items, total, err := NewProductRepository(db).List(context.Background(), filter, utils.GetPaginationParams(1, 50))
	require.NoError(t, err)
	require.Equal(t, int64(len(items)), total)
	ids := make([]uuid.UUID, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestProductRepository_MarketplaceConjunction(t *testing.T) {
	flips := map[string]string{
		"product draft":    "UPDATE products SET status = 'DRAFT' WHERE id = ?",
		"product inactive": "UPDATE products SET is_active = 0 WHERE id = ?",
		"vendor blocked":   "UPDATE users SET is_blocked = 1 WHERE id = (SELECT vendor_id FROM products WHERE id = ?)",
		"profile pending":  "UPDATE vendor_profiles SET status = 'PENDING' WHERE id = (SELECT vendor_profile_id FROM products WHERE id = ?)",
		"profile hidden":   "UPDATE vendor_profiles SET is_public = 0 WHERE id = (SELECT vendor_profile_id FROM products WHERE id = ?)",
		"profile missing":  "DELETE FROM vendor_profiles WHERE id = (SELECT vendor_profile_id FROM products WHERE id = ?)",
		"vendor missing":   "DELETE FROM users WHERE id = (SELECT vendor_id FROM products WHERE id = ?)",
	}

	for name, flip := range flips {
		t.Run(name, func(t *testing.T) {
			db := newTestDB(t)
			createAllTables(t, db)
			target := seedMarket(t, db, "default")
			other := seedMarket(t, db, "default")

			before := marketIDs(t, db, entities.MarketplaceFilter("default"))
			require.ElementsMatch(t, []uuid.UUID{target.product.ID, other.product.ID}, before)

			mustExec(t, db, flip, target.product.ID)

			after := marketIDs(t, db, entities.MarketplaceFilter("default"))
			require.Equal(t, []uuid.UUID{other.product.ID}, after)
		})
	}
}

func TestProductRepository_MarketplaceIsTenantScoped(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	home := seedMarket(t, db, "default")
	foreign := seedMarket(t, db, "fonts")

	require.Equal(t, []uuid.UUID{home.product.ID}, marketIDs(t, db, entities.MarketplaceFilter("default")))
	require.Equal(t, []uuid.UUID{foreign.product.ID}, marketIDs(t, db, entities.MarketplaceFilter("fonts")))
	require.Empty(t, marketIDs(t, db, entities.MarketplaceFilter("unknown")))
}

func TestProductRepository_CategorySearchAndVendorPage(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	a := seedMarket(t, db, "default")
	b := seedMarket(t, db, "default")
	mustExec(t, db, "UPDATE products SET category = 'icons', title = 'Line Icons' WHERE id = ?", b.product.ID)

	require.Equal(t, []uuid.UUID{b.product.ID}, marketIDs(t, db, entities.MarketplaceFilter("default").WithCategory("icons")))
	require.Equal(t, []uuid.UUID{a.product.ID}, marketIDs(t, db, entities.MarketplaceFilter("default").WithSearch("SERIF")))
	require.Equal(t, []uuid.UUID{a.product.ID}, marketIDs(t, db, entities.MarketplaceFilter("default").WithVendorProfile(a.profile.ID)))
	require.Equal(t, []uuid.UUID{b.product.ID}, marketIDs(t, db, entities.MarketplaceFilter("default").WithProduct(b.product.ID)))

	// blocking the vendor hides the vendor page listing too
	mustExec(t, db, "UPDATE users SET is_blocked = 1 WHERE id = ?", a.vendor.ID)
	require.Empty(t, marketIDs(t, db, entities.MarketplaceFilter("default").WithVendorProfile(a.profile.ID)))
}

func TestProductRepository_OwnListingIncludesAllStates(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	f := seedMarket(t, db, "default")
	repo := NewProductRepository(db)
	ctx := context.Background()

	draft := &entities.Product{TenantKey: "default", VendorID: f.vendor.ID, VendorProfileID: f.profile.ID, Title: "Draft", Status: entities.ProductStatusDraft}
	require.NoError(t, repo.Create(ctx, draft))

	vendorID := f.vendor.ID
	ids := marketIDs(t, db, entities.ProductFilter{TenantKey: "default", VendorID: &vendorID})
	require.ElementsMatch(t, []uuid.UUID{f.product.ID, draft.ID}, ids)
}

func TestProductRepository_UpdateAndBlockByVendor(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	f := seedMarket(t, db, "default")
	other := seedMarket(t, db, "fonts")
	repo := NewProductRepository(db)
	ctx := context.Background()

	second := &entities.Product{TenantKey: "default", VendorID: f.vendor.ID, VendorProfileID: f.profile.ID, Title: "Draft", Status: entities.ProductStatusDraft}
	require.NoError(t, repo.Create(ctx, second))

	p, err := repo.GetByID(ctx, f.product.ID)
	require.NoError(t, err)
	p.Title = "Serif Pack 2"
	p.PriceCents = 1900
	require.NoError(t, repo.Update(ctx, p))
	p, err = repo.GetByID(ctx, f.product.ID)
	require.NoError(t, err)
	require.Equal(t, "Serif Pack 2", p.Title)
	require.Equal(t, int64(1900), p.PriceCents)

	affected, err := repo.BlockByVendor(ctx, "default", f.vendor.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)

	for _, id := range []uuid.UUID{f.product.ID, second.ID} {
		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, entities.ProductStatusBlocked, got.Status)
		require.False(t, got.IsActive)
	}

	// other tenants are untouched
	untouched, err := repo.GetByID(ctx, other.product.ID)
	require.NoError(t, err)
	require.Equal(t, entities.ProductStatusActive, untouched.Status)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.Update(ctx, &entities.Product{ID: uuid.New()}), domainerrors.ErrNotFound)
}
