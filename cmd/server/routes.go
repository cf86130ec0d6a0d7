package main

import (
	"github.com/gin-gonic/gin"

	"digimarket.backend/internal/interfaces/http/handlers"
	"digimarket.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler      *handlers.AuthHandler
	tenantHandler    *handlers.TenantHandler
	productHandler   *handlers.ProductHandler
	vendorHandler    *handlers.VendorHandler
	orderHandler     *handlers.OrderHandler
	payoutHandler    *handlers.PayoutHandler
	userHandler      *handlers.UserHandler
	webhookHandler   *handlers.WebhookHandler
	fileHandler      *handlers.FileHandler
	authMiddleware   gin.HandlerFunc
	tenantMiddleware gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	// Signed file URLs carry their own authorization and are tenant independent
	r.GET("/files/:token", d.fileHandler.Serve)

	v1 := r.Group("/api/v1")
	v1.Use(d.tenantMiddleware)
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.RefreshToken)
			auth.GET("/me", d.authMiddleware, d.authHandler.Me)
		}

		// Storefront (public)
		v1.GET("/tenant", d.tenantHandler.Current)
		v1.GET("/products", d.productHandler.ListMarketplace)
		v1.GET("/products/:id", d.productHandler.GetProduct)
		v1.GET("/vendors/:slug", d.productHandler.VendorPage)

		// Payment provider callbacks
		v1.POST("/webhooks/payments", d.webhookHandler.HandlePayment)

		// Buyer routes (protected)
		v1.POST("/checkout", d.authMiddleware, middleware.IdempotencyMiddleware(), d.orderHandler.Checkout)
		orders := v1.Group("/orders")
		orders.Use(d.authMiddleware)
		{
			orders.GET("", d.orderHandler.ListOrders)
			orders.GET("/:id/download", d.orderHandler.Download)
		}

		// Vendor routes (protected)
		vendor := v1.Group("/vendor")
		vendor.Use(d.authMiddleware)
		{
			vendor.GET("/profile", d.vendorHandler.GetProfile)
			vendor.POST("/profile", d.vendorHandler.CreateProfile)
			vendor.PUT("/profile", d.vendorHandler.UpdateProfile)
			vendor.GET("/entitlement", d.vendorHandler.Entitlement)

			vendor.GET("/products", d.productHandler.ListOwn)
			vendor.POST("/products", d.productHandler.Create)
			vendor.PUT("/products/:id", d.productHandler.Update)
			vendor.POST("/files", d.productHandler.UploadFile)

			vendor.GET("/payouts", d.payoutHandler.ListOwn)
			vendor.GET("/payouts/balance", d.payoutHandler.Balance)
			vendor.POST("/payouts", middleware.IdempotencyMiddleware(), d.payoutHandler.Request)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.GET("/tenants", d.tenantHandler.List)
			admin.POST("/tenants", d.tenantHandler.Create)
			admin.GET("/tenants/:key", d.tenantHandler.Get)
			admin.PUT("/tenants/:key", d.tenantHandler.Update)
			admin.POST("/tenants/:key/domains", d.tenantHandler.AddDomain)
			admin.DELETE("/tenants/:key/domains/:id", d.tenantHandler.RemoveDomain)
			admin.PUT("/tenants/:key/domains/:id/primary", d.tenantHandler.SetPrimaryDomain)

			admin.GET("/vendors", d.vendorHandler.List)
			admin.PUT("/vendors/:id/status", d.vendorHandler.SetStatus)

			admin.GET("/users", d.userHandler.List)
			admin.PUT("/users/:id/block", d.userHandler.SetBlocked)

			admin.PUT("/products/:id/status", d.productHandler.SetStatus)

			admin.GET("/payouts", d.payoutHandler.List)
			admin.PUT("/payouts/:id/paid", d.payoutHandler.MarkPaid)
			admin.PUT("/payouts/:id/cancel", d.payoutHandler.Cancel)
		}
	}
}
