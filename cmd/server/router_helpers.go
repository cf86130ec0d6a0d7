package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"digimarket.backend/internal/interfaces/http/handlers"
	"digimarket.backend/internal/interfaces/http/middleware"
	"digimarket.backend/pkg/metrics"
)

const (
	corsAllowMethods  = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsAllowHeaders  = "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader + ", " + middleware.IdempotencyHeader
	corsExposeHeaders = middleware.RequestIDHeader + ", X-Idempotency-Hit"
)

// applyCORSMiddleware echoes the caller origin. Storefronts run on many
// tenant domains, so there is no fixed allow list.
func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", corsAllowMethods)
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
		c.Header("Access-Control-Expose-Headers", corsExposeHeaders)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine, h *handlers.HealthHandler) {
	r.GET("/health", h.Health)
}

func registerMetricsRoute(r *gin.Engine, reg *metrics.Registry) {
	r.GET("/metrics", gin.WrapH(reg.Handler()))
}
