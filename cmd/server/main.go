package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"digimarket.backend/internal/config"
	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/internal/infrastructure/cache"
	"digimarket.backend/internal/infrastructure/datasources/postgres"
	"digimarket.backend/internal/infrastructure/events"
	"digimarket.backend/internal/infrastructure/jobs"
	"digimarket.backend/internal/infrastructure/payment"
	"digimarket.backend/internal/infrastructure/repositories"
	"digimarket.backend/internal/infrastructure/storage"
	"digimarket.backend/internal/interfaces/http/handlers"
	"digimarket.backend/internal/interfaces/http/middleware"
	"digimarket.backend/internal/usecases"
	"digimarket.backend/pkg/jwt"
	"digimarket.backend/pkg/logger"
	"digimarket.backend/pkg/metrics"
	"digimarket.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = postgres.NewConnection
	getStdDB   = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	runServer  = func(srv *http.Server) error { return srv.ListenAndServe() }
	notifyStop = func() <-chan os.Signal {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		return quit
	}
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

// eventPublisher is what the server owns: it publishes and must be closed.
type eventPublisher interface {
	usecases.EventPublisher
	Close() error
}

// app is the fully wired server before it starts listening.
type app struct {
	router    *gin.Engine
	expiryJob *jobs.PendingOrderExpiryJob
	publisher eventPublisher
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if cfg.Redis.URL != "" {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		logger.Info(ctx, "Redis initialized")
	} else {
		logger.Warn(ctx, "REDIS_URL not set, idempotency and shared tenant cache disabled")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()
	logger.Info(ctx, "Connected to PostgreSQL via GORM")

	a, err := buildApp(cfg, db, sqlDB)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.publisher.Close(); err != nil {
			logger.Warn(ctx, "Failed to close event publisher", zap.Error(err))
		}
	}()

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.expiryJob.Start(jobCtx)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-notifyStop()
		logger.Info(ctx, "Shutting down server")
		a.expiryJob.Stop()
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info(ctx, "DigiMarket backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("api", cfg.Server.PublicBaseURL+"/api/v1"),
		zap.Int("routes", len(a.router.Routes())),
	)

	if err := runServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// buildApp wires repositories, usecases and handlers onto a router.
func buildApp(cfg *config.Config, db *gorm.DB, pinger handlers.Pinger) (*app, error) {
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	files, err := storage.NewLocalStorage(cfg.Storage, cfg.Server.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	publisher := newPublisher(cfg.Kafka)
	reg := metrics.New()

	// Repositories
	tenantRepo := repositories.NewTenantRepository(db)
	domainRepo := repositories.NewTenantDomainRepository(db)
	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewVendorProfileRepository(db)
	productRepo := repositories.NewProductRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	linkRepo := repositories.NewDownloadLinkRepository(db)
	payoutRepo := repositories.NewPayoutRepository(db)
	uow := repositories.NewUnitOfWork(db)

	policy := entities.DownloadPolicy{Expiry: cfg.Download.LinkExpiry, MaxDownloads: cfg.Download.MaxDownloads}
	checkout := payment.NewHostedCheckout(cfg.Payment.CheckoutBaseURL, cfg.Server.PublicBaseURL)

	// Usecases
	tenantUsecase := usecases.NewTenantUsecase(tenantRepo, domainRepo, uow, newTenantCache(cfg.Tenant), cfg.Tenant.DefaultKey, cfg.Server.DevHostname)
	authUsecase := usecases.NewAuthUsecase(userRepo, jwtService)
	vendorUsecase := usecases.NewVendorUsecase(profileRepo, userRepo, productRepo, uow, publisher)
	productUsecase := usecases.NewProductUsecase(productRepo, profileRepo, vendorUsecase, files)
	fulfillment := usecases.NewFulfillmentUsecase(orderRepo, linkRepo, productRepo, uow, publisher, policy)
	orderUsecase := usecases.NewOrderUsecase(orderRepo, linkRepo, productRepo, productUsecase, fulfillment, checkout, cfg.Payment.Currency)
	downloadUsecase := usecases.NewDownloadUsecase(orderRepo, linkRepo, files)
	payoutUsecase := usecases.NewPayoutUsecase(orderRepo, payoutRepo, uow, publisher)
	userUsecase := usecases.NewUserUsecase(userRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(reg))

	applyCORSMiddleware(r)
	registerHealthRoute(r, handlers.NewHealthHandler(pinger))
	registerMetricsRoute(r, reg)
	registerAPIV1Routes(r, routeDeps{
		authHandler:      handlers.NewAuthHandler(authUsecase),
		tenantHandler:    handlers.NewTenantHandler(tenantUsecase),
		productHandler:   handlers.NewProductHandler(productUsecase),
		vendorHandler:    handlers.NewVendorHandler(vendorUsecase),
		orderHandler:     handlers.NewOrderHandler(orderUsecase, downloadUsecase, reg),
		payoutHandler:    handlers.NewPayoutHandler(payoutUsecase, reg),
		userHandler:      handlers.NewUserHandler(userUsecase),
		webhookHandler:   handlers.NewWebhookHandler(fulfillment, payment.NewVerifier(cfg.Payment.WebhookSecret, cfg.Payment.WebhookTolerance), reg),
		fileHandler:      handlers.NewFileHandler(files),
		authMiddleware:   middleware.AuthMiddleware(jwtService),
		tenantMiddleware: middleware.TenantMiddleware(tenantUsecase),
	})

	return &app{
		router:    r,
		expiryJob: jobs.NewPendingOrderExpiryJob(orderRepo, cfg.Jobs.PendingOrderTTL, cfg.Jobs.PendingOrderInterval),
		publisher: publisher,
	}, nil
}

func newPublisher(cfg config.KafkaConfig) eventPublisher {
	if len(cfg.Brokers) == 0 {
		return events.NopPublisher{}
	}
	return events.NewKafkaPublisher(cfg)
}

// newTenantCache falls back to the in-process cache when Redis is not configured.
func newTenantCache(cfg config.TenantConfig) usecases.TenantCache {
	if cfg.CacheBackend == "redis" && redis.Enabled() {
		return cache.NewRedisTenantCache("tenant", cfg.CacheTTL)
	}
	return cache.NewMemoryTenantCache(cfg.CacheTTL)
}
