package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/brandprices-backend/api/controllers"
	"github.com/angelmondragon/brandprices-backend/api/middleware"
	"github.com/angelmondragon/brandprices-backend/internal/brands"
	"github.com/angelmondragon/brandprices-backend/internal/prices"
	"github.com/angelmondragon/brandprices-backend/pkg/config"
	"github.com/angelmondragon/brandprices-backend/pkg/logger"
	"github.com/angelmondragon/brandprices-backend/pkg/metrics"
	"github.com/angelmondragon/brandprices-backend/pkg/redis"
)

// Dependencies are the collaborators shared by the HTTP surface. IdempotencyStore and
// RateLimiter may be nil: idempotency is then disabled and rate limiting falls back to
// in-process buckets.
type Dependencies struct {
	Gatherer         prometheus.Gatherer
	HTTPMetrics      *metrics.HTTPMetrics
	Readiness        map[string]redis.Pinger
	IdempotencyStore redis.IdempotencyStore
	RateLimiter      redis.RateLimiter
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	deps Dependencies,
	priceService prices.Service,
	brandService brands.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	apiPolicy := middleware.NewRateLimitPolicy("api", cfg.RateLimit.Window, cfg.RateLimit.IPLimit)
	idempotent := middleware.Idempotency(deps.IdempotencyStore, cfg.Idempotency.TTL, logg)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(apiPolicy, deps.RateLimiter, logg))

		r.Route("/prices", func(r chi.Router) {
			r.Get("/", controllers.ListPrices(priceService, logg))
			r.Get("/resolve", controllers.ResolvePrice(priceService, logg))
			r.Get("/applicable/{date}/{productId}/{brandId}", controllers.ResolveApplicablePrice(priceService, logg))
			r.Get("/{id}", controllers.GetPrice(priceService, logg))
			r.With(idempotent).Post("/price", controllers.CreatePrice(priceService, logg))
			r.Put("/price/{id}", controllers.UpdatePrice(priceService, logg))
			r.Delete("/price/{id}", controllers.DeletePrice(priceService, logg))
		})

		r.Route("/brands", func(r chi.Router) {
			r.Get("/", controllers.ListBrands(brandService, logg))
			r.With(idempotent).Post("/", controllers.CreateBrand(brandService, logg))
			r.Get("/{id}", controllers.GetBrand(brandService, logg))
			r.Put("/{id}", controllers.UpdateBrand(brandService, logg))
			r.Delete("/{id}", controllers.DeleteBrand(brandService, logg))
			r.Get("/{id}/prices", controllers.ListBrandPrices(brandService, logg))
		})
	})

	return r
}
