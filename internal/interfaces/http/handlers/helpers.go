package handlers

import (
	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/interfaces/http/middleware"
	"digimarket.backend/internal/interfaces/http/response"
	"digimarket.backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// bindJSON binds the request body and renders a VALIDATION error on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return false
	}
	return true
}

// paramID parses a uuid path parameter.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, domainerrors.Validation("Ungültige ID"))
		return uuid.Nil, false
	}
	return id, true
}

func pagination(c *gin.Context) utils.PaginationParams {
	var q utils.PaginationParams
	_ = c.ShouldBindQuery(&q)
	return utils.GetPaginationParams(q.Page, q.Limit)
}

func listResponse(items interface{}, total int64, p utils.PaginationParams) gin.H {
	return gin.H{
		"items": items,
		"meta":  utils.CalculateMeta(total, p.Page, p.Limit),
	}
}

// requester returns the authenticated caller; routes using it sit behind
// AuthMiddleware so a miss is rendered as UNAUTHENTICATED.
func requester(c *gin.Context) (entities.Requester, bool) {
	r, ok := middleware.GetRequester(c)
	if !ok {
		response.Error(c, domainerrors.Unauthenticated("Anmeldung erforderlich"))
		return entities.Requester{}, false
	}
	return r, true
}

// tenant returns the tenant resolved by TenantMiddleware.
func tenant(c *gin.Context) (entities.TenantContext, bool) {
	t, ok := middleware.GetTenant(c)
	if !ok {
		response.Error(c, domainerrors.ErrDefaultTenantMissing)
		return entities.TenantContext{}, false
	}
	return t, true
}
