package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"rslportal/internal/config"
	"rslportal/internal/infrastructure"
	"rslportal/internal/middleware"
	"rslportal/internal/services"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Portal   services.PortalService
	Workflow services.WorkflowService
	License  services.LicenseService
	Metrics  *infrastructure.PortalMetrics
	MetricsH http.Handler
	Logger   *slog.Logger
	Security config.SecurityConfig
}

// NewRouter assembles the portal's HTTP routes and middleware chain.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Metrics(deps.Metrics))
	if deps.Security.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(deps.Security.RateLimit.RPS, deps.Security.RateLimit.Burst, deps.Logger)
		r.Use(rl.Handler)
	}
	r.Use(chimiddleware.Timeout(30 * time.Second))

	health := NewHealthHandler(infrastructure.ServiceVersion)
	r.Get("/healthz", health.Health)
	if deps.MetricsH != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsH)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Identity)
		api.Mount("/customers", NewCustomerHandler(deps.Portal, deps.Logger).Routes())
		api.Mount("/orders", NewOrderHandler(deps.Portal, deps.Logger).Routes())
		api.Mount("/reports", NewReportHandler(deps.Portal, deps.Logger).Routes())
		api.Mount("/license", NewLicenseHandler(deps.License, deps.Logger).Routes())
		api.Mount("/workflow", NewWorkflowHandler(deps.Workflow, deps.Logger).Routes())
	})

	return r
}
