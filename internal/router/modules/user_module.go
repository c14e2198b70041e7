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

// UserModule wires user HTTP handlers and auth middleware into routes.
// Public: POST /api/users, POST /api/users/login, POST /api/users/refresh
// Protected: the rest of the user directory; listing and deleting
// require the ADMIN role.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/users", registerLimiter, m.Handler.Register)
	rg.POST("/users/login", loginLimiter, m.Handler.Login)
	rg.POST("/users/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), middleware.AllowPrivateIP()))
	{
		auth.POST("/users/logout", m.Handler.Logout)
		auth.GET("/users/:id", m.Handler.GetByID)
		auth.PUT("/users/:id", m.Handler.Update)

		admin := auth.Group("/")
		admin.Use(middleware.RequireRole(entity.RoleAdmin))
		{
			admin.GET("/users", m.Handler.GetAll)
			admin.DELETE("/users/:id", m.Handler.Delete)
		}
	}
}
