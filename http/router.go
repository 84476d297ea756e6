package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tax-agent/metrics"
)

type RouterConfig struct {
	Tax            *TaxHandler
	Investment     *InvestmentHandler
	Health         *HealthHandler
	RateLimiter    *RateLimiter
	AllowedOrigins []string
}

// NewRouter wires all routes. Calculation routes are rate limited; health and
// metrics are not.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Client-Info", "Apikey"},
		MaxAge:         300,
	}))

	r.Get("/health", cfg.Health.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(RateLimitMiddleware(cfg.RateLimiter))
		}

		r.Route("/tax", func(r chi.Router) {
			r.Post("/calculate", cfg.Tax.Calculate)
			r.Post("/effective-rate", cfg.Tax.EffectiveRate)
			r.Post("/marginal-rate", cfg.Tax.MarginalRate)
			r.Post("/explain", cfg.Tax.Explain)
			r.Get("/years", cfg.Tax.Years)
			r.Get("/calculations", cfg.Tax.History)
		})

		r.Post("/investment/calculate", cfg.Investment.Calculate)
	})

	return r
}
