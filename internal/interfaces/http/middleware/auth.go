package middleware

import (
	"errors"
	"strings"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/interfaces/http/response"
	"digimarket.backend/pkg/jwt"
	"digimarket.backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// UserEmailKey is the context key for user email
	UserEmailKey = "userEmail"
	// UserRoleKey is the context key for user role
	UserRoleKey = "userRole"
)

// AuthMiddleware creates a new authentication middleware
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			abort(c, domainerrors.Unauthenticated("Anmeldung erforderlich"))
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abort(c, domainerrors.Unauthenticated("Ungültiges Authorization-Format, erwartet: Bearer <token>"))
			return
		}

		claims, err := jwtService.ValidateAccessToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			logger.Debug(c.Request.Context(), "Access token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			if errors.Is(err, jwt.ErrExpiredToken) {
				abort(c, domainerrors.Unauthenticated("Sitzung abgelaufen"))
				return
			}
			abort(c, domainerrors.Unauthenticated("Ungültiges Token"))
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, claims.Role)

		c.Next()
	}
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetUserRole gets the user role from context
func GetUserRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(string)
	return r, ok
}

// GetRequester returns the authenticated caller as the usecases expect it.
func GetRequester(c *gin.Context) (entities.Requester, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return entities.Requester{}, false
	}
	role, _ := GetUserRole(c)
	return entities.Requester{UserID: id, Role: entities.UserRole(role)}, true
}

// RequireRole creates a middleware that requires a specific role
func RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := GetUserRole(c)
		if !exists {
			abort(c, domainerrors.Unauthenticated("Anmeldung erforderlich"))
			return
		}

		for _, role := range roles {
			if userRole == string(role) {
				c.Next()
				return
			}
		}

		abort(c, domainerrors.Forbidden("Keine Berechtigung"))
	}
}

// RequireAdmin creates a middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(entities.UserRoleAdmin)
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}
