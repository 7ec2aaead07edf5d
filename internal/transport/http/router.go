// Package httptransport assembles the HTTP surface: middleware chain,
// authenticated API routes, and the operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	matchinghandler "lifebridge/internal/matching/handler"
	registryhandler "lifebridge/internal/registry/handler"
	"lifebridge/internal/requests"
	"lifebridge/pkg/platform/httputil"
	"lifebridge/pkg/platform/middleware/auth"
	"lifebridge/pkg/platform/middleware/metadata"
)

// HealthChecker reports the liveness of one backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router mounts.
type Deps struct {
	Logger   *slog.Logger
	Verifier *auth.Verifier

	Matching *matchinghandler.Handler
	Registry *registryhandler.Handler
	Requests *requests.Handler

	// Health lists named dependency checks for /healthz.
	Health map[string]HealthChecker
}

// NewRouter wires all endpoints. Everything under /matches and /profiles
// requires a valid bearer token; /healthz and /metrics stay open for
// orchestration and scraping.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metadata.RequestID)

	r.Get("/healthz", healthHandler(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Verifier, deps.Logger))

		deps.Matching.Routes(r)
		deps.Requests.Routes(r)
		deps.Registry.Routes(r)
	})

	return r
}

func healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}

		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Health(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
			} else {
				body[name] = "ok"
			}
		}

		httputil.WriteJSON(w, status, body)
	}
}
