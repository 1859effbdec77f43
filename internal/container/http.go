package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/keygate/internal/auth"
	"github.com/serroba/keygate/internal/credential"
	"github.com/serroba/keygate/internal/handlers"
	"github.com/serroba/keygate/internal/health"
	"github.com/serroba/keygate/internal/metrics"
	"github.com/serroba/keygate/internal/middleware"
	"github.com/serroba/keygate/internal/ratelimit"
	"github.com/serroba/keygate/internal/usage"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the Huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		m := do.MustInvoke[*metrics.Metrics](i)

		api := humachi.New(router, huma.DefaultConfig("keygate", "1.0.0"))

		if opts.IssueRateLimit > 0 {
			api.UseMiddleware(middleware.RateLimiter(api, do.MustInvoke[ratelimit.Limiter](i), logger))
		}

		api.UseMiddleware(middleware.RequireAPIKey(api, do.MustInvoke[*auth.Validator](i), logger))

		handlers.RegisterRoutes(api,
			handlers.NewKeyHandler(do.MustInvoke[*credential.Service](i), logger),
			handlers.NewSignHandler(do.MustInvoke[*usage.Tracker](i)),
			handlers.NewUsageHandler(do.MustInvoke[*usage.Counters](i)),
		)

		checkers := map[string]health.Checker{"storage": do.MustInvoke[Storage](i)}
		if opts.usesRedis() {
			checkers["redis"] = health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client)
		}

		health.RegisterRoutes(api, health.NewHandler(checkers))

		router.Handle("/metrics", m.Handler())

		return api, nil
	})
}
