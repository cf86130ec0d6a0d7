package repositories

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"digimarket.backend/internal/domain/entities"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory database free of lock errors
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createTenantTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE tenants (
		id TEXT PRIMARY KEY,
		key TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		mode TEXT NOT NULL,
		catalog_mode TEXT NOT NULL,
		payments_enabled BOOLEAN NOT NULL DEFAULT 0,
		vendor_onboarding TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE tenant_domains (
		id TEXT PRIMARY KEY,
		tenant_key TEXT NOT NULL,
		domain TEXT NOT NULL UNIQUE,
		is_primary BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER',
		is_blocked BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createVendorProfileTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE vendor_profiles (
		id TEXT PRIMARY KEY,
		tenant_key TEXT NOT NULL,
		user_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		is_public BOOLEAN NOT NULL DEFAULT 0,
		display_name TEXT NOT NULL,
		bio TEXT,
		avatar_url TEXT,
		social_links TEXT,
		slug TEXT NOT NULL,
		approved_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (tenant_key, user_id),
		UNIQUE (tenant_key, slug)
	);`)
}

func createProductTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE products (
		id TEXT PRIMARY KEY,
		tenant_key TEXT NOT NULL,
		vendor_id TEXT NOT NULL,
		vendor_profile_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		price_cents INTEGER NOT NULL DEFAULT 0,
		category TEXT,
		file_ref TEXT,
		thumbnail_url TEXT,
		status TEXT NOT NULL DEFAULT 'DRAFT',
		is_active BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createOrderTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		tenant_key TEXT NOT NULL,
		buyer_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		vendor_id TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		currency TEXT NOT NULL,
		vendor_earnings_cents INTEGER,
		platform_earnings_cents INTEGER,
		status TEXT NOT NULL,
		checkout_ref TEXT NOT NULL UNIQUE,
		paid_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE download_links (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL UNIQUE,
		file_ref TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		max_downloads INTEGER NOT NULL,
		download_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createPayoutTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE payouts (
		id TEXT PRIMARY KEY,
		vendor_id TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		status TEXT NOT NULL,
		note TEXT,
		paid_at DATETIME,
		cancelled_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE UNIQUE INDEX uq_payouts_vendor_pending ON payouts (vendor_id) WHERE status = 'PENDING';`)
}

func createAllTables(t *testing.T, db *gorm.DB) {
	createTenantTables(t, db)
	createUserTable(t, db)
	createVendorProfileTable(t, db)
	createProductTable(t, db)
	createOrderTables(t, db)
	createPayoutTable(t, db)
}

// marketFixture seeds one approved, public vendor with an active product.
type marketFixture struct {
	vendor  *entities.User
	profile *entities.VendorProfile
	product *entities.Product
}

func seedMarket(t *testing.T, db *gorm.DB, tenantKey string) marketFixture {
	t.Helper()
	ctx := context.Background()
	users := NewUserRepository(db)
	profiles := NewVendorProfileRepository(db)
	products := NewProductRepository(db)

	vendor := &entities.User{Email: uuid.NewString() + "@vendor.test", Name: "Vendor", PasswordHash: "x", Role: entities.UserRoleVendor}
	require.NoError(t, users.Create(ctx, vendor))

	profile := &entities.VendorProfile{
		TenantKey:   tenantKey,
		UserID:      vendor.ID,
		Status:      entities.VendorStatusApproved,
		IsPublic:    true,
		DisplayName: "Studio",
		Slug:        "studio-" + vendor.ID.String(),
	}
	require.NoError(t, profiles.Create(ctx, profile))

	product := &entities.Product{
		TenantKey:       tenantKey,
		VendorID:        vendor.ID,
		VendorProfileID: profile.ID,
		Title:           "Serif Pack",
		PriceCents:      1500,
		Category:        "fonts",
		FileRef:         "files/serif.zip",
		Status:          entities.ProductStatusActive,
		IsActive:        true,
	}
	require.NoError(t, products.Create(ctx, product))

	return marketFixture{vendor: vendor, profile: profile, product: product}
}
