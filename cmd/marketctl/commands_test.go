package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"digimarket.backend/internal/config"
	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/internal/infrastructure/repositories"
	"digimarket.backend/pkg/crypto"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tenants (id TEXT PRIMARY KEY, key TEXT NOT NULL UNIQUE, name TEXT NOT NULL, mode TEXT NOT NULL,
		catalog_mode TEXT NOT NULL, payments_enabled BOOLEAN NOT NULL DEFAULT 0, vendor_onboarding TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'ACTIVE', created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE IF NOT EXISTS tenant_domains (id TEXT PRIMARY KEY, tenant_key TEXT NOT NULL, domain TEXT NOT NULL UNIQUE,
		is_primary BOOLEAN NOT NULL DEFAULT 0, created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE IF NOT EXISTS users (id TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE, name TEXT NOT NULL, password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER', is_blocked BOOLEAN NOT NULL DEFAULT 0, created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE IF NOT EXISTS orders (id TEXT PRIMARY KEY, tenant_key TEXT NOT NULL, buyer_id TEXT NOT NULL, product_id TEXT NOT NULL,
		vendor_id TEXT NOT NULL, amount_cents INTEGER NOT NULL, currency TEXT NOT NULL, vendor_earnings_cents INTEGER,
		platform_earnings_cents INTEGER, status TEXT NOT NULL, checkout_ref TEXT NOT NULL UNIQUE, paid_at DATETIME,
		created_at DATETIME, updated_at DATETIME)`,
}

type testEnv struct {
	path  string
	opens int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{path: filepath.Join(t.TempDir(), "market.db")}
}

func (e *testEnv) deps(t *testing.T) deps {
	return deps{
		loadEnv: func() error { return errors.New("no .env") },
		loadCfg: func() *config.Config {
			return &config.Config{
				Server: config.ServerConfig{DevHostname: "localhost"},
				Tenant: config.TenantConfig{DefaultKey: "default"},
			}
		},
		open: func(config.DatabaseConfig) (*sql.DB, *gorm.DB, error) {
			e.opens++
			db, err := gorm.Open(sqlite.Open(e.path), &gorm.Config{TranslateError: true})
			require.NoError(t, err)
			for _, stmt := range schema {
				require.NoError(t, db.Exec(stmt).Error)
			}
			sqlDB, err := db.DB()
			require.NoError(t, err)
			return sqlDB, db, nil
		},
	}
}

func (e *testEnv) db(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(e.path), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func execute(t *testing.T, d deps, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(d)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	root := newRootCmd(defaultDeps())
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "seed", "backfill-earnings", "hash-password"} {
		assert.True(t, names[want], want)
	}
}

func TestMigrateCmd_RejectsUnknownCommand(t *testing.T) {
	env := newTestEnv(t)
	_, err := execute(t, env.deps(t), "", "migrate", "sideways")
	require.Error(t, err)
	assert.Equal(t, 0, env.opens)
}

func TestConnect_Error(t *testing.T) {
	d := newTestEnv(t).deps(t)
	d.open = func(config.DatabaseConfig) (*sql.DB, *gorm.DB, error) { return nil, nil, errors.New("refused") }

	_, err := execute(t, d, "", "backfill-earnings")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to database")
}

func TestHashPasswordCmd(t *testing.T) {
	d := newTestEnv(t).deps(t)

	out, err := execute(t, d, "", "hash-password", "s3cret-pass")
	require.NoError(t, err)
	assert.True(t, crypto.CheckPassword("s3cret-pass", strings.TrimSpace(out)))

	out, err = execute(t, d, "from-stdin\n", "hash-password")
	require.NoError(t, err)
	assert.True(t, crypto.CheckPassword("from-stdin", strings.TrimSpace(out)))

	_, err = execute(t, d, "", "hash-password")
	require.ErrorIs(t, err, ErrPasswordRequired)
}

func TestBackfillEarningsCmd(t *testing.T) {
	env := newTestEnv(t)
	d := env.deps(t)
	sqlDB, db, err := d.open(config.DatabaseConfig{})
	require.NoError(t, err)

	insert := `INSERT INTO orders (id, tenant_key, buyer_id, product_id, vendor_id, amount_cents, currency, status, checkout_ref, created_at, updated_at)
		VALUES (?, 'default', ?, ?, ?, ?, 'eur', ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`
	ids := []string{
		"0190a000-0000-7000-8000-0000000000a1",
		"0190a000-0000-7000-8000-0000000000a2",
		"0190a000-0000-7000-8000-0000000000a3",
	}
	amounts := []int64{1500, 999, 0}
	party := "0190a000-0000-7000-8000-0000000000ff"
	for i, id := range ids {
		require.NoError(t, db.Exec(insert, id, party, party, party, amounts[i], "PAID", "chk_"+id).Error)
	}
	require.NoError(t, sqlDB.Close())

	out, err := execute(t, d, "", "backfill-earnings", "--batch", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Backfilled 3 orders")

	check := env.db(t)
	type split struct {
		VendorEarningsCents   int64
		PlatformEarningsCents int64
	}
	want := []split{{1200, 300}, {799, 200}, {0, 0}}
	for i, id := range ids {
		var got split
		require.NoError(t, check.Raw(`SELECT vendor_earnings_cents, platform_earnings_cents FROM orders WHERE id = ?`, id).Scan(&got).Error)
		assert.Equal(t, want[i], got, id)
	}

	out, err = execute(t, d, "", "backfill-earnings")
	require.NoError(t, err)
	assert.Contains(t, out, "Backfilled 0 orders")
}

const seedYAML = `
tenants:
  - key: Font Shop
    name: Font Shop
    mode: WHITE_LABEL
    catalogMode: PAID_ONLY
    paymentsEnabled: true
    vendorOnboarding: AUTO_APPROVE
    domains:
      - fonts.example.com
      - www.type.example.com
admins:
  - email: Admin@Example.com
    name: Admin
    password: admin-pass
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSeedCmd_IsRerunnable(t *testing.T) {
	env := newTestEnv(t)
	d := env.deps(t)
	path := writeSeed(t, seedYAML)

	out, err := execute(t, d, "", "seed", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Tenant font-shop created")
	assert.Contains(t, out, "Domain type.example.com bound to font-shop")
	assert.Contains(t, out, "Admin admin@example.com created")

	out, err = execute(t, d, "", "seed", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Tenant font-shop exists")
	assert.Contains(t, out, "Admin admin@example.com exists")
	assert.NotContains(t, out, "bound to")

	db := env.db(t)
	ctx := context.Background()
	tenant, err := repositories.NewTenantRepository(db).GetByKey(ctx, "font-shop")
	require.NoError(t, err)
	assert.Equal(t, entities.TenantModeWhiteLabel, tenant.Mode)
	assert.Equal(t, entities.VendorOnboardingAutoApprove, tenant.VendorOnboarding)
	assert.True(t, tenant.PaymentsEnabled)

	domains, err := repositories.NewTenantDomainRepository(db).ListByTenant(ctx, "font-shop")
	require.NoError(t, err)
	require.Len(t, domains, 2)

	admin, err := repositories.NewUserRepository(db).GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleAdmin, admin.Role)
	assert.True(t, crypto.CheckPassword("admin-pass", admin.PasswordHash))
}

func TestSeedCmd_PromotesExistingUser(t *testing.T) {
	env := newTestEnv(t)
	d := env.deps(t)
	sqlDB, db, err := d.open(config.DatabaseConfig{})
	require.NoError(t, err)
	require.NoError(t, repositories.NewUserRepository(db).Create(context.Background(), &entities.User{
		Email: "admin@example.com", Name: "Existing", PasswordHash: "x", Role: entities.UserRoleUser,
	}))
	require.NoError(t, sqlDB.Close())

	out, err := execute(t, d, "", "seed", "-f", writeSeed(t, "admins:\n  - email: admin@example.com\n    password: whatever\n"))
	require.NoError(t, err)
	assert.Contains(t, out, "User admin@example.com promoted to admin")
}

func TestSeedCmd_Errors(t *testing.T) {
	d := newTestEnv(t).deps(t)

	_, err := execute(t, d, "", "seed")
	require.ErrorIs(t, err, ErrSeedFileRequired)

	_, err = execute(t, d, "", "seed", "-f", writeSeed(t, "tenants:\n  - key: a\n    colour: red\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid seed file")

	_, err = execute(t, d, "", "seed", "-f", writeSeed(t, "admins:\n  - email: a@b.c\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs email and password")
}

func TestParseSeedFile_Empty(t *testing.T) {
	file, err := parseSeedFile(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, file.Tenants)
	assert.Empty(t, file.Admins)
}
