package handlers

import (
	"net/http"

	"digimarket.backend/internal/interfaces/http/response"
	"digimarket.backend/internal/usecases"
	"github.com/gin-gonic/gin"
)

// UserHandler handles user administration
type UserHandler struct {
	userUsecase *usecases.UserUsecase
}

func NewUserHandler(userUsecase *usecases.UserUsecase) *UserHandler {
	return &UserHandler{userUsecase: userUsecase}
}

// List lists users, optionally filtered by ?q= on email or name
// GET /api/v1/admin/users
func (h *UserHandler) List(c *gin.Context) {
	p := pagination(c)
	users, total, err := h.userUsecase.List(c.Request.Context(), c.Query("q"), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, listResponse(users, total, p))
}

// SetBlocked sets the block flag of a vendor account
// PUT /api/v1/admin/users/:id/block
func (h *UserHandler) SetBlocked(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input struct {
		Blocked *bool `json:"blocked" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.userUsecase.SetBlocked(c.Request.Context(), id, *input.Blocked)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}
