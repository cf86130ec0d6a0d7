package handlers

import (
	"net/http"
	"time"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/interfaces/http/response"
	"digimarket.backend/internal/usecases"
	"github.com/gin-gonic/gin"
)

const refreshCookie = "refresh_token"

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase *usecases.AuthUsecase
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUsecase *usecases.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	auth, err := h.authUsecase.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setRefreshCookie(c, auth)
	response.Success(c, http.StatusCreated, authBody(auth))
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	auth, err := h.authUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setRefreshCookie(c, auth)
	response.Success(c, http.StatusOK, authBody(auth))
}

// RefreshToken handles token refresh. The token is read from the JSON body
// and falls back to the refresh cookie.
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input entities.RefreshInput
	token := ""
	if c.Request.ContentLength > 0 && c.ShouldBindJSON(&input) == nil {
		token = input.RefreshToken
	}
	if token == "" {
		token, _ = c.Cookie(refreshCookie)
	}
	if token == "" {
		response.Error(c, domainerrors.Unauthenticated("Refresh-Token fehlt"))
		return
	}

	auth, err := h.authUsecase.RefreshToken(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setRefreshCookie(c, auth)
	response.Success(c, http.StatusOK, authBody(auth))
}

// Me returns the current user
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}

	user, err := h.authUsecase.GetUserByID(c.Request.Context(), req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, auth *entities.AuthResponse) {
	maxAge := int(time.Until(auth.RefreshExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = 3600 * 24 * 7
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookie, auth.RefreshToken, maxAge, "/api/v1/auth", "", c.Request.TLS != nil, true)
}

func authBody(auth *entities.AuthResponse) gin.H {
	return gin.H{
		"accessToken":      auth.AccessToken,
		"refreshToken":     auth.RefreshToken,
		"accessExpiresAt":  auth.AccessExpiresAt,
		"refreshExpiresAt": auth.RefreshExpiresAt,
		"user":             auth.User,
	}
}
