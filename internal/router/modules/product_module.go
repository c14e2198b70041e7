package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storeops/store-management-api/internal/container"
	"github.com/storeops/store-management-api/internal/domain/entity"
	handlers "github.com/storeops/store-management-api/internal/interface/http"
	"github.com/storeops/store-management-api/internal/interface/middleware"
	"github.com/storeops/store-management-api/pkg/helpers"
)

// ProductModule exposes the catalog. Reads are public; writes require
// the ADMIN role.
type ProductModule struct {
	Handler *handlers.ProductHandler
	JWT     *helpers.JWTManager
}

func NewProductModule(h *handlers.ProductHandler, jwt *helpers.JWTManager) *ProductModule {
	return &ProductModule{Handler: h, JWT: jwt}
}

func (m *ProductModule) Register(rg *gin.RouterGroup) {
	readLimiter := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	rg.GET("/products", readLimiter, m.Handler.GetAll)
	rg.GET("/products/search", readLimiter, m.Handler.Search)
	rg.GET("/products/:id", readLimiter, m.Handler.GetByID)

	admin := rg.Group("/")
	admin.Use(
		middleware.Auth(container.GetRedis(), m.JWT),
		middleware.RequireRole(entity.RoleAdmin),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		admin.POST("/products", m.Handler.Add)
		admin.PUT("/products/:id", m.Handler.Update)
		admin.DELETE("/products/:id", m.Handler.Delete)
		admin.POST("/products/:id/image", m.Handler.UploadImage)
	}
}
