// Package app contains the application setup for the marketplace.
package app

import (
	"log/slog"
	"net/http"

	"github.com/arjunmeena977/vendor-ecommerce/internal/auth"
	cartservice "github.com/arjunmeena977/vendor-ecommerce/internal/cart/service"
	cartstore "github.com/arjunmeena977/vendor-ecommerce/internal/cart/store"
	cartrest "github.com/arjunmeena977/vendor-ecommerce/internal/cart/transport/rest"
	catalogservice "github.com/arjunmeena977/vendor-ecommerce/internal/catalog/service"
	catalogstore "github.com/arjunmeena977/vendor-ecommerce/internal/catalog/store"
	catalogrest "github.com/arjunmeena977/vendor-ecommerce/internal/catalog/transport/rest"
	"github.com/arjunmeena977/vendor-ecommerce/internal/config"
	orderservice "github.com/arjunmeena977/vendor-ecommerce/internal/order/service"
	orderstore "github.com/arjunmeena977/vendor-ecommerce/internal/order/store"
	orderrest "github.com/arjunmeena977/vendor-ecommerce/internal/order/transport/rest"
	userservice "github.com/arjunmeena977/vendor-ecommerce/internal/user/service"
	userstore "github.com/arjunmeena977/vendor-ecommerce/internal/user/store"
	userrest "github.com/arjunmeena977/vendor-ecommerce/internal/user/transport/rest"
	"github.com/arjunmeena977/vendor-ecommerce/pkg/messaging"
	"github.com/arjunmeena977/vendor-ecommerce/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependencies struct {
	UserService    userservice.UserService
	CatalogService catalogservice.CatalogService
	CartService    cartservice.CartService
	OrderService   orderservice.OrderService
	Tokens         *auth.TokenManager
	AuthMw         *auth.Middleware
	Logger         *slog.Logger
}

// SetupDependencies wires stores, services and auth for the marketplace.
func SetupDependencies(dbPool *pgxpool.Pool, redisClient *redis.Client,
	publisher messaging.Publisher, cfg *config.Config, logger *slog.Logger) *Dependencies {

	users := userservice.NewService(userstore.NewPgStore(dbPool))
	products := catalogservice.NewService(catalogstore.NewPgStore(dbPool))

	carts := cartstore.NewRedisStore(redisClient, cfg.Redis.CartTTL)
	orders := orderservice.NewService(orderstore.NewPgStore(dbPool),
		catalogstore.NewPgStore(dbPool), carts, publisher, cfg.Orders)

	tokens := auth.NewTokenManager(cfg.JWT)
	authMw := auth.NewMiddleware(tokens, users, logger)

	return &Dependencies{
		UserService:    users,
		CatalogService: products,
		CartService:    cartservice.NewService(carts),
		OrderService:   orders,
		Tokens:         tokens,
		AuthMw:         authMw,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the HTTP router and routes for the marketplace.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the marketplace application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	userrest.NewHandler(deps.UserService, deps.Tokens, deps.AuthMw, deps.Logger).RegisterRoutes(mux)
	catalogrest.NewHandler(deps.CatalogService, deps.AuthMw, deps.Logger).RegisterRoutes(mux)
	cartrest.NewHandler(deps.CartService, deps.AuthMw, deps.Logger).RegisterRoutes(mux)
	orderrest.NewHandler(deps.OrderService, deps.AuthMw, deps.Logger).RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the marketplace application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
