// Package app assembles the portal: configuration, logging, telemetry,
// the in-memory dataset, the services, and the HTTP server with graceful
// shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"rslportal/internal/config"
	"rslportal/internal/infrastructure"
	"rslportal/internal/license"
	"rslportal/internal/pricing"
	"rslportal/internal/reports"
	"rslportal/internal/services"
	"rslportal/internal/store"
	transporthttp "rslportal/internal/transport/http"
	"rslportal/internal/visibility"
	"rslportal/internal/workflow"
)

// Application owns the portal's long-lived components.
type Application struct {
	Config *config.Config
	Logger *slog.Logger
	Server *http.Server

	otelProviders *infrastructure.OTelProviders
}

// NewApplication builds the portal from configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	metrics, err := infrastructure.CreatePortalMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	dataset := store.New(store.DefaultCatalog())
	if cfg.Data.Seed {
		if err := store.Seed(dataset); err != nil {
			return nil, fmt.Errorf("failed to seed dataset: %w", err)
		}
	}

	seed := cfg.Data.LicenseKeySeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	issuer := license.NewIssuer(rand.NewSource(seed))
	calc := pricing.NewCalculator(dataset.Catalog())
	engine := visibility.NewEngine(dataset)
	rep := reports.NewService(engine)
	machine := workflow.NewMachine(dataset, issuer, calc)
	wizards := workflow.NewMemoryStore()

	router := transporthttp.NewRouter(transporthttp.RouterDeps{
		Portal:   services.NewPortalService(engine, rep, logger),
		Workflow: services.NewWorkflowService(machine, wizards, metrics, logger),
		License:  services.NewLicenseService(issuer, logger),
		Metrics:  metrics,
		MetricsH: providers.PrometheusHTTP,
		Logger:   logger,
		Security: cfg.Security,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Application{
		Config:        cfg,
		Logger:        logger,
		Server:        server,
		otelProviders: providers,
	}, nil
}

// Run starts the HTTP server and blocks until shutdown completes.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("server starting",
			slog.String("addr", a.Server.Addr),
		)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		if err := a.otelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("telemetry shutdown failed",
				slog.String("error", err.Error()),
			)
		}
		infrastructure.CloseLogFile()
		return nil
	})

	return g.Wait()
}
