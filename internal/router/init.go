package router

import (
	app "github.com/storeops/store-management-api/internal/application"
	"github.com/storeops/store-management-api/internal/container"
	pginfra "github.com/storeops/store-management-api/internal/infrastructure/postgres"
	handlers "github.com/storeops/store-management-api/internal/interface/http"
	"github.com/storeops/store-management-api/internal/router/modules"
)

func buildUserService() *app.UserService {
	return app.NewUserService(
		pginfra.NewUserRepository(container.GetPGPool()),
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
	)
}

func buildProductService() *app.ProductService {
	cfg := container.GetConfig()
	return app.NewProductService(
		pginfra.NewProductRepository(container.GetPGPool()),
		container.GetRedis(),
		container.GetES(),
		cfg.ESProductsIndex,
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetLogger(),
	)
}

func buildOrderService(users *app.UserService, catalog *app.ProductService) *app.OrderService {
	cfg := container.GetConfig()
	return app.NewOrderService(
		pginfra.NewOrderRepository(container.GetPGPool()),
		users,
		catalog,
		container.GetRabbitPub(),
		container.GetLogger(),
		cfg.OrderSkipMissingProducts,
	)
}

// InitModules builds the application services from the container
// singletons and registers every feature module with the registry.
// Call once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()

	users := buildUserService()
	catalog := buildProductService()
	orders := buildOrderService(users, catalog)

	userHandler := handlers.NewUserHandler(users, logger, cfg.CookieDomain, cfg.CookieSecure)
	productHandler := handlers.NewProductHandler(catalog, logger)
	orderHandler := handlers.NewOrderHandler(orders, logger)

	r.Add(modules.NewUserModule(userHandler, jwt))
	r.Add(modules.NewProductModule(productHandler, jwt))
	r.Add(modules.NewOrderModule(orderHandler, jwt))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
