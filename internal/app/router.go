package app

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brooksyott/licensing-server/internal/config"
	"github.com/brooksyott/licensing-server/internal/infrastructure"
	"github.com/brooksyott/licensing-server/internal/middleware"
	transport "github.com/brooksyott/licensing-server/internal/transport/http"
)

type handlers struct {
	keys      transport.KeyService
	skus      transport.SkuService
	customers transport.CustomerService
	licenses  transport.LicenseService
	authKeys  interface {
		transport.AuthKeyService
		middleware.RoleResolver
	}
}

// buildRouter assembles the middleware chain and mounts all resource
// routes. Health and metrics stay outside API-key auth.
func buildRouter(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders, pool *pgxpool.Pool, h handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.StripSlashes)

	if cfg.Security.EnableCORS {
		r.Use(middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: cfg.Security.AllowedOrigins,
		}))
	}
	if cfg.Security.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst, logger)
		r.Use(limiter.Handler)
	}
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout, logger))

	if providers.PrometheusHTTP != nil {
		r.Handle("/metrics", providers.PrometheusHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Mount("/health", transport.NewHealthHandler(pool, infrastructure.ServiceVersion, logger).Routes())

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(h.authKeys, logger))

			r.Mount("/keys", transport.NewKeyHandler(h.keys, logger).Routes())
			r.Mount("/skus", transport.NewSkuHandler(h.skus, logger).Routes())
			r.Mount("/customers", transport.NewCustomerHandler(h.customers, logger).Routes())
			r.Mount("/licenses", transport.NewLicenseHandler(h.licenses, logger).Routes())
			r.Mount("/auth-keys", transport.NewAuthKeyHandler(h.authKeys, logger).Routes())
		})
	})

	return r
}
