package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/farmdirect/farmdirect-backend/api/controllers"
	"github.com/farmdirect/farmdirect-backend/api/middleware"
	"github.com/farmdirect/farmdirect-backend/internal/admin"
	"github.com/farmdirect/farmdirect-backend/internal/auth"
	"github.com/farmdirect/farmdirect-backend/internal/orders"
	"github.com/farmdirect/farmdirect-backend/internal/products"
	"github.com/farmdirect/farmdirect-backend/internal/users"
	"github.com/farmdirect/farmdirect-backend/pkg/config"
	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Ready    func(context.Context) error
	Users    *users.Repository
	Auth     *auth.Service
	Products *products.Service
	Orders   *orders.Service
	Admin    *admin.Service
	Metrics  prometheus.Gatherer
}

// NewRouter assembles the chi router. Invariants live in the services; the
// routes only decode, dispatch, and encode.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Ready))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register/start", controllers.AuthRegisterStart(deps.Auth, logg))
		r.Post("/register/complete", controllers.AuthRegisterComplete(deps.Auth, logg))
		r.Post("/login/start", controllers.AuthLoginStart(deps.Auth, logg))
		r.Post("/login/verify", controllers.AuthLoginVerify(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/me", controllers.AuthMe(deps.Users, logg))
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/search", controllers.SearchProducts(deps.Products, logg))
		r.Get("/{productId}", controllers.GetProduct(deps.Products, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.With(middleware.RequireRole(logg, enums.RoleFarmer)).
				Post("/create", controllers.CreateProduct(deps.Products, logg))
			r.With(middleware.RequireRole(logg, enums.RoleFarmer)).
				Get("/my-products", controllers.MyProducts(deps.Products, logg))
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.With(middleware.RequireRole(logg, enums.RoleRetailer)).
			Post("/create", controllers.PlaceOrder(deps.Orders, logg))
		r.Get("/my-orders", controllers.MyOrders(deps.Orders, logg))
		r.With(middleware.RequireRole(logg, enums.RoleFarmer, enums.RoleDelivery, enums.RoleAdmin)).
			Put("/{orderId}/status", controllers.UpdateOrderStatus(deps.Orders, logg))
		r.With(middleware.RequireRole(logg, enums.RoleDelivery)).
			Get("/delivery/available", controllers.AvailableDeliveryOrders(deps.Orders, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.RoleAdmin))

		r.Get("/stats", controllers.AdminStats(deps.Admin, logg))
		r.Get("/users", controllers.AdminUsers(deps.Admin, logg))
	})

	return r
}
