package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pulseboard/pulseboard/internal/auth"
	finplanhttp "github.com/pulseboard/pulseboard/internal/finplan/http"
	"github.com/pulseboard/pulseboard/internal/observability"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Config         *Config
	AuthMiddleware auth.Middleware
	FinanceHandler *finplanhttp.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with Pulseboard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireOrg)
		if params.FinanceHandler != nil {
			params.FinanceHandler.MountRoutes(r)
		}
	})

	return r
}
