package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storeops/store-management-api/internal/container"
	handlers "github.com/storeops/store-management-api/internal/interface/http"
	"github.com/storeops/store-management-api/internal/interface/middleware"
	"github.com/storeops/store-management-api/pkg/helpers"
)

// OrderModule wires the order workflow. Every route requires an
// authenticated session; no route is role-gated, any customer can
// manage orders.
type OrderModule struct {
	Handler *handlers.OrderHandler
	JWT     *helpers.JWTManager
}

func NewOrderModule(h *handlers.OrderHandler, jwt *helpers.JWTManager) *OrderModule {
	return &OrderModule{Handler: h, JWT: jwt}
}

func (m *OrderModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	m.mount(auth)
}

// mount registers the order routes on an already-authenticated group.
func (m *OrderModule) mount(rg *gin.RouterGroup) {
	rg.POST("/orders", m.Handler.Add)
	rg.GET("/orders", m.Handler.GetAll)
	rg.GET("/orders/:id", m.Handler.GetByID)
	rg.PUT("/orders/:id", m.Handler.Update)
	rg.DELETE("/orders/:id", m.Handler.Delete)
}
