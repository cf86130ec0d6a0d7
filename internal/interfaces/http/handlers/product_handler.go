package handlers

import (
	"errors"
	"net/http"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/infrastructure/storage"
	"digimarket.backend/internal/interfaces/http/response"
	"digimarket.backend/internal/usecases"
	"github.com/gin-gonic/gin"
)

// uploadField is the multipart form field carrying a product file.
const uploadField = "file"

// ProductHandler handles the public catalog and vendor product management
type ProductHandler struct {
	productUsecase *usecases.ProductUsecase
}

// NewProductHandler creates a new product handler
func NewProductHandler(productUsecase *usecases.ProductUsecase) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase}
}

// ListMarketplace lists products visible in the tenant's marketplace
// GET /api/v1/products?category=&q=&page=&limit=
func (h *ProductHandler) ListMarketplace(c *gin.Context) {
	t, ok := tenant(c)
	if !ok {
		return
	}
	p := pagination(c)

	products, total, err := h.productUsecase.ListMarketplace(c.Request.Context(), t.Key, c.Query("category"), c.Query("q"), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, listResponse(products, total, p))
}

// GetProduct returns one marketplace-visible product
// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	t, ok := tenant(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	product, err := h.productUsecase.GetMarketplaceProduct(c.Request.Context(), t.Key, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"product": product})
}

// VendorPage returns the public page of a vendor
// GET /api/v1/vendors/:slug
func (h *ProductHandler) VendorPage(c *gin.Context) {
	t, ok := tenant(c)
	if !ok {
		return
	}
	p := pagination(c)

	page, total, err := h.productUsecase.VendorPage(c.Request.Context(), t.Key, c.Param("slug"), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	body := listResponse(page.Products, total, p)
	body["vendor"] = page.Profile
	response.Success(c, http.StatusOK, body)
}

// ListOwn lists the caller's products in every state
// GET /api/v1/vendor/products
func (h *ProductHandler) ListOwn(c *gin.Context) {
	t, ok := tenant(c)
	if !ok {
		return
	}
	req, ok := requester(c)
	if !ok {
		return
	}
	p := pagination(c)

	products, total, err := h.productUsecase.ListOwn(c.Request.Context(), t.Key, req.UserID, p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, listResponse(products, total, p))
}

// Create creates a product for the caller
// POST /api/v1/vendor/products
func (h *ProductHandler) Create(c *gin.Context) {
	t, ok := tenant(c)
	if !ok {
		return
	}
	req, ok := requester(c)
	if !ok {
		return
	}
	var input entities.ProductInput
	if !bindJSON(c, &input) {
		return
	}

	product, err := h.productUsecase.Create(c.Request.Context(), t, req.UserID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"product": product})
}

// Update updates one of the caller's products
// PUT /api/v1/vendor/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	t, ok := tenant(c)
	if !ok {
		return
	}
	req, ok := requester(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input entities.ProductInput
	if !bindJSON(c, &input) {
		return
	}

	product, err := h.productUsecase.Update(c.Request.Context(), t, req.UserID, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"product": product})
}

// UploadFile stores a product file and returns its reference
// POST /api/v1/vendor/files (multipart, field "file")
func (h *ProductHandler) UploadFile(c *gin.Context) {
	t, ok := tenant(c)
	if !ok {
		return
	}
	req, ok := requester(c)
	if !ok {
		return
	}

	header, err := c.FormFile(uploadField)
	if err != nil {
		response.Error(c, domainerrors.Validation("Datei fehlt"))
		return
	}
	f, err := header.Open()
	if err != nil {
		response.Error(c, domainerrors.Validation("Datei konnte nicht gelesen werden"))
		return
	}
	defer f.Close()

	ref, err := h.productUsecase.UploadFile(c.Request.Context(), t.Key, req.UserID, header.Filename, f)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			response.Error(c, domainerrors.Validation("Datei ist zu groß"))
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"fileRef": ref})
}

// SetStatus blocks or unblocks a product
// PUT /api/v1/admin/products/:id/status
func (h *ProductHandler) SetStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input entities.SetProductStatusInput
	if !bindJSON(c, &input) {
		return
	}

	product, err := h.productUsecase.SetProductStatus(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"product": product})
}
