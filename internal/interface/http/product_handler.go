package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	app "github.com/storeops/store-management-api/internal/application"
	"github.com/storeops/store-management-api/internal/domain/entity"
	"github.com/storeops/store-management-api/pkg/response"
	"github.com/storeops/store-management-api/pkg/validation"
)

type ProductHandler struct {
	Svc    *app.ProductService
	Logger *logrus.Logger
}

func NewProductHandler(svc *app.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Svc: svc, Logger: logger}
}

type productRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Quantity    int             `json:"quantity" binding:"gte=0"`
}

type productResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	ImageURL    string `json:"image_url,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toProductResponse(p *entity.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Quantity:    p.Quantity,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (r productRequest) toInput() (app.ProductInput, bool) {
	if r.Price.IsNegative() {
		return app.ProductInput{}, false
	}
	return app.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
	}, true
}

// Add POST /api/products
func (h *ProductHandler) Add(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in, ok := req.toInput()
	if !ok {
		response.Error[any](c, http.StatusBadRequest, "price must not be negative", nil)
		return
	}
	p, err := h.Svc.Add(c.Request.Context(), in)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to create product", nil)
		return
	}
	response.Success(c, http.StatusCreated, toProductResponse(p), "product created", nil)
}

// GetByID GET /api/products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	p, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, app.ErrProductNotFound) {
			response.Error[any](c, http.StatusNotFound, "product not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to load product", nil)
		return
	}
	response.Success(c, http.StatusOK, toProductResponse(p), "product", nil)
}

// GetAll GET /api/products
func (h *ProductHandler) GetAll(c *gin.Context) {
	products, err := h.Svc.GetAll(c.Request.Context())
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to list products", nil)
		return
	}
	if len(products) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	out := make([]productResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	response.Success(c, http.StatusOK, out, "products", map[string]any{"count": len(out)})
}

// Update PUT /api/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in, ok := req.toInput()
	if !ok {
		response.Error[any](c, http.StatusBadRequest, "price must not be negative", nil)
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		if errors.Is(err, app.ErrProductNotFound) {
			response.Error[any](c, http.StatusNotFound, "product not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to update product", nil)
		return
	}
	response.Success(c, http.StatusOK, toProductResponse(p), "product updated", nil)
}

// Delete DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, app.ErrProductNotFound) {
			response.Error[any](c, http.StatusNotFound, "product not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to delete product", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search GET /api/products/search?q=...&size=...
func (h *ProductHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query parameter q", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		response.Error[any](c, http.StatusBadGateway, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

// UploadImage POST /api/products/:id/image (multipart field "image")
func (h *ProductHandler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing image file", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable image file", nil)
		return
	}
	defer f.Close()

	url, err := h.Svc.UploadImage(c.Request.Context(), c.Param("id"), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, app.ErrProductNotFound) {
			response.Error[any](c, http.StatusNotFound, "product not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to upload image", nil)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"image_url": url}, "image uploaded", nil)
}
