package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keksoko/storefront/api/controllers"
	"github.com/keksoko/storefront/api/middleware"
	"github.com/keksoko/storefront/internal/cart"
	"github.com/keksoko/storefront/internal/catalog"
	checkoutsvc "github.com/keksoko/storefront/internal/checkout"
	reviewsvc "github.com/keksoko/storefront/internal/reviews"
	"github.com/keksoko/storefront/pkg/config"
	"github.com/keksoko/storefront/pkg/logger"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	Carts        *cart.Provider
	Browsers     *catalog.Registry
	Checkout     checkoutsvc.Service
	Reviews      reviewsvc.Service
	Readiness    []controllers.Dependency
	PromRegistry *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness...))
	})

	if deps.PromRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Session, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Carts, logg))
			r.Delete("/", controllers.CartClear(deps.Carts, logg))
			r.Post("/items", controllers.CartAddItem(deps.Carts, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateQuantity(deps.Carts, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Carts, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutSubmit(deps.Checkout, deps.Carts, logg))
			r.Get("/{orderId}", controllers.CheckoutStatus(deps.Checkout, logg))
		})

		r.Get("/products", controllers.Products(deps.Browsers, logg))

		r.Route("/products/{productId}/review", func(r chi.Router) {
			r.Get("/", controllers.ReviewState(deps.Reviews, logg))
			r.Post("/", controllers.ReviewSubmit(deps.Reviews, logg))
		})
	})

	return r
}
