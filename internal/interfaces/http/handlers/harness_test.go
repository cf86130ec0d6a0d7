package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"digimarket.backend/internal/config"
	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/internal/infrastructure/cache"
	"digimarket.backend/internal/infrastructure/events"
	"digimarket.backend/internal/infrastructure/payment"
	"digimarket.backend/internal/infrastructure/repositories"
	"digimarket.backend/internal/infrastructure/storage"
	"digimarket.backend/internal/interfaces/http/middleware"
	"digimarket.backend/internal/usecases"
	"digimarket.backend/pkg/jwt"
	"digimarket.backend/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testBaseURL       = "http://api.test"
	testWebhookSecret = "whsec_test"
)

var schema = []string{
	`CREATE TABLE tenants (id TEXT PRIMARY KEY, key TEXT NOT NULL UNIQUE, name TEXT NOT NULL, mode TEXT NOT NULL,
		catalog_mode TEXT NOT NULL, payments_enabled BOOLEAN NOT NULL DEFAULT 0, vendor_onboarding TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'ACTIVE', created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE tenant_domains (id TEXT PRIMARY KEY, tenant_key TEXT NOT NULL, domain TEXT NOT NULL UNIQUE,
		is_primary BOOLEAN NOT NULL DEFAULT 0, created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE users (id TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE, name TEXT NOT NULL, password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER', is_blocked BOOLEAN NOT NULL DEFAULT 0, created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE vendor_profiles (id TEXT PRIMARY KEY, tenant_key TEXT NOT NULL, user_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING', is_public BOOLEAN NOT NULL DEFAULT 0, display_name TEXT NOT NULL,
		bio TEXT, avatar_url TEXT, social_links TEXT, slug TEXT NOT NULL, approved_at DATETIME,
		created_at DATETIME, updated_at DATETIME, UNIQUE (tenant_key, user_id), UNIQUE (tenant_key, slug))`,
	`CREATE TABLE products (id TEXT PRIMARY KEY, tenant_key TEXT NOT NULL, vendor_id TEXT NOT NULL,
		vendor_profile_id TEXT NOT NULL, title TEXT NOT NULL, description TEXT, price_cents INTEGER NOT NULL DEFAULT 0,
		category TEXT, file_ref TEXT, thumbnail_url TEXT, status TEXT NOT NULL DEFAULT 'DRAFT',
		is_active BOOLEAN NOT NULL DEFAULT 0, created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE orders (id TEXT PRIMARY KEY, tenant_key TEXT NOT NULL, buyer_id TEXT NOT NULL, product_id TEXT NOT NULL,
		vendor_id TEXT NOT NULL, amount_cents INTEGER NOT NULL, currency TEXT NOT NULL, vendor_earnings_cents INTEGER,
		platform_earnings_cents INTEGER, status TEXT NOT NULL, checkout_ref TEXT NOT NULL UNIQUE, paid_at DATETIME,
		created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE download_links (id TEXT PRIMARY KEY, order_id TEXT NOT NULL UNIQUE, file_ref TEXT NOT NULL,
		expires_at DATETIME NOT NULL, is_active BOOLEAN NOT NULL DEFAULT 1, max_downloads INTEGER NOT NULL,
		download_count INTEGER NOT NULL DEFAULT 0, created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE payouts (id TEXT PRIMARY KEY, vendor_id TEXT NOT NULL, amount_cents INTEGER NOT NULL, status TEXT NOT NULL,
		note TEXT, paid_at DATETIME, cancelled_at DATETIME, created_at DATETIME, updated_at DATETIME)`,
	`CREATE UNIQUE INDEX uq_payouts_vendor_pending ON payouts (vendor_id) WHERE status = 'PENDING'`,
}

// testServer wires the real usecases and repositories on in-memory sqlite.
type testServer struct {
	t        *testing.T
	db       *gorm.DB
	router   *gin.Engine
	jwt      *jwt.JWTService
	verifier *payment.Verifier
	users    *repositories.UserRepository
}

func newTestServer(t *testing.T, onboarding entities.VendorOnboarding) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error, stmt)
	}

	tenantRepo := repositories.NewTenantRepository(db)
	domainRepo := repositories.NewTenantDomainRepository(db)
	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewVendorProfileRepository(db)
	productRepo := repositories.NewProductRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	linkRepo := repositories.NewDownloadLinkRepository(db)
	payoutRepo := repositories.NewPayoutRepository(db)
	uow := repositories.NewUnitOfWork(db)

	require.NoError(t, tenantRepo.Create(context.Background(), &entities.Tenant{
		Key:              "default",
		Name:             "Default",
		Mode:             entities.TenantModeMarketplace,
		CatalogMode:      entities.CatalogModeMixed,
		PaymentsEnabled:  true,
		VendorOnboarding: onboarding,
		Status:           entities.TenantStatusActive,
	}))

	files, err := storage.NewLocalStorage(config.StorageConfig{
		Root:          t.TempDir(),
		SigningKey:    strings.Repeat("ab", 32),
		SignedURLTTL:  5 * time.Minute,
		MaxUploadSize: 1 << 20,
	}, testBaseURL)
	require.NoError(t, err)

	jwtService := jwt.NewJWTService("test-secret", "digimarket", 15*time.Minute, time.Hour)
	verifier := payment.NewVerifier(testWebhookSecret, 5*time.Minute)
	publisher := events.NopPublisher{}
	reg := metrics.New()

	tenantUsecase := usecases.NewTenantUsecase(tenantRepo, domainRepo, uow, cache.NewMemoryTenantCache(time.Minute), "default", "localhost")
	authUsecase := usecases.NewAuthUsecase(userRepo, jwtService)
	vendorUsecase := usecases.NewVendorUsecase(profileRepo, userRepo, productRepo, uow, publisher)
	productUsecase := usecases.NewProductUsecase(productRepo, profileRepo, vendorUsecase, files)
	fulfillment := usecases.NewFulfillmentUsecase(orderRepo, linkRepo, productRepo, uow, publisher, entities.DefaultDownloadPolicy)
	orderUsecase := usecases.NewOrderUsecase(orderRepo, linkRepo, productRepo, productUsecase, fulfillment,
		payment.NewHostedCheckout("https://pay.test/checkout", testBaseURL), "EUR")
	downloadUsecase := usecases.NewDownloadUsecase(orderRepo, linkRepo, files)
	payoutUsecase := usecases.NewPayoutUsecase(orderRepo, payoutRepo, uow, publisher)
	userUsecase := usecases.NewUserUsecase(userRepo)

	authHandler := NewAuthHandler(authUsecase)
	tenantHandler := NewTenantHandler(tenantUsecase)
	productHandler := NewProductHandler(productUsecase)
	vendorHandler := NewVendorHandler(vendorUsecase)
	orderHandler := NewOrderHandler(orderUsecase, downloadUsecase, reg)
	payoutHandler := NewPayoutHandler(payoutUsecase, reg)
	userHandler := NewUserHandler(userUsecase)
	webhookHandler := NewWebhookHandler(fulfillment, verifier, reg)
	fileHandler := NewFileHandler(files)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.GET("/files/:token", fileHandler.Serve)

	auth := middleware.AuthMiddleware(jwtService)
	v1 := r.Group("/api/v1", middleware.TenantMiddleware(tenantUsecase))
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/refresh", authHandler.RefreshToken)
	v1.GET("/auth/me", auth, authHandler.Me)
	v1.GET("/tenant", tenantHandler.Current)
	v1.GET("/products", productHandler.ListMarketplace)
	v1.GET("/products/:id", productHandler.GetProduct)
	v1.GET("/vendors/:slug", productHandler.VendorPage)
	v1.POST("/webhooks/payments", webhookHandler.HandlePayment)
	v1.POST("/checkout", auth, orderHandler.Checkout)
	v1.GET("/orders", auth, orderHandler.ListOrders)
	v1.GET("/orders/:id/download", auth, orderHandler.Download)
	vendor := v1.Group("/vendor", auth)
	vendor.GET("/profile", vendorHandler.GetProfile)
	vendor.POST("/profile", vendorHandler.CreateProfile)
	vendor.GET("/entitlement", vendorHandler.Entitlement)
	vendor.GET("/products", productHandler.ListOwn)
	vendor.POST("/products", productHandler.Create)
	vendor.PUT("/products/:id", productHandler.Update)
	vendor.POST("/files", productHandler.UploadFile)
	vendor.GET("/payouts", payoutHandler.ListOwn)
	vendor.GET("/payouts/balance", payoutHandler.Balance)
	vendor.POST("/payouts", payoutHandler.Request)
	admin := v1.Group("/admin", auth, middleware.RequireAdmin())
	admin.GET("/tenants", tenantHandler.List)
	admin.POST("/tenants", tenantHandler.Create)
	admin.GET("/vendors", vendorHandler.List)
	admin.PUT("/vendors/:id/status", vendorHandler.SetStatus)
	admin.PUT("/users/:id/block", userHandler.SetBlocked)
	admin.PUT("/products/:id/status", productHandler.SetStatus)
	admin.GET("/payouts", payoutHandler.List)
	admin.PUT("/payouts/:id/paid", payoutHandler.MarkPaid)

	return &testServer{t: t, db: db, router: r, jwt: jwtService, verifier: verifier, users: userRepo}
}

type apiResponse struct {
	Code int
	Body map[string]interface{}
	Raw  *httptest.ResponseRecorder
}

func (s *testServer) do(method, path string, body interface{}, token string) apiResponse {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Host = "localhost"
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.AuthorizationHeader, middleware.BearerPrefix+token)
	}
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) apiResponse {
	s.t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	out := apiResponse{Code: rec.Code, Raw: rec}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out.Body), rec.Body.String())
	}
	return out
}

// register creates an account and returns its access token and id.
func (s *testServer) register(email string) (string, string) {
	s.t.Helper()
	res := s.do(http.MethodPost, "/api/v1/auth/register", gin.H{"email": email, "name": "Tester", "password": "correct-horse"}, "")
	require.Equal(s.t, http.StatusCreated, res.Code, res.Raw.Body.String())
	user := res.Body["user"].(map[string]interface{})
	return res.Body["accessToken"].(string), user["id"].(string)
}

// adminToken creates an admin directly in the store and signs a token for it.
func (s *testServer) adminToken() string {
	s.t.Helper()
	admin := &entities.User{Email: "admin@market.test", Name: "Admin", PasswordHash: "x", Role: entities.UserRoleAdmin}
	require.NoError(s.t, s.users.Create(context.Background(), admin))
	pair, err := s.jwt.GenerateTokenPair(admin.ID, admin.Email, string(admin.Role))
	require.NoError(s.t, err)
	return pair.AccessToken
}

// becomeVendor onboards the caller and uploads one file, returning its ref.
func (s *testServer) becomeVendor(token string) string {
	s.t.Helper()
	res := s.do(http.MethodPost, "/api/v1/vendor/profile", gin.H{"displayName": "Type Studio", "bio": "Fonts"}, token)
	require.Equal(s.t, http.StatusCreated, res.Code, res.Raw.Body.String())
	return s.upload(token, "serif.zip", "PK-font-bytes")
}

func (s *testServer) upload(token, filename, content string) string {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(uploadField, filename)
	require.NoError(s.t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(s.t, err)
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vendor/files", &buf)
	req.Host = "localhost"
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.AuthorizationHeader, middleware.BearerPrefix+token)
	res := s.serve(req)
	require.Equal(s.t, http.StatusCreated, res.Code, res.Raw.Body.String())
	return res.Body["fileRef"].(string)
}

func (s *testServer) createProduct(token, fileRef string, price int64) string {
	s.t.Helper()
	res := s.do(http.MethodPost, "/api/v1/vendor/products", gin.H{
		"title":      "Serif Pack",
		"priceCents": price,
		"category":   "Fonts",
		"fileRef":    fileRef,
		"status":     "ACTIVE",
	}, token)
	require.Equal(s.t, http.StatusCreated, res.Code, res.Raw.Body.String())
	return res.Body["product"].(map[string]interface{})["id"].(string)
}

func (s *testServer) webhook(payload []byte, header string) apiResponse {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", bytes.NewReader(payload))
	req.Host = "localhost"
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set(PaymentSignatureHeader, header)
	}
	return s.serve(req)
}

func errorCode(res apiResponse) string {
	code, _ := res.Body["code"].(string)
	return code
}
