package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	orderhttp "github.com/Apurer/order-desk-api/internal/domains/orders/adapters/http"
	orderobs "github.com/Apurer/order-desk-api/internal/domains/orders/adapters/observability"
	orderworkflows "github.com/Apurer/order-desk-api/internal/domains/orders/adapters/workflows"
	orderapp "github.com/Apurer/order-desk-api/internal/domains/orders/application"
	orderports "github.com/Apurer/order-desk-api/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/order-desk-api/internal/platform/observability"
)

// ServiceName identifies the API in traces and metrics.
const ServiceName = "order-desk-api"

// Run boots the order desk HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.Options{
		ServiceName:    ServiceName,
		ServiceVersion: cfg.AppVersion,
		LogLevel:       cfg.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger
	logger.Info("configuration loaded", slog.String("config", cfg.String()))

	repo, cleanupRepo, err := BuildRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanupRepo()

	service := orderobs.New(
		orderapp.NewService(repo),
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	var placement orderports.PlacementOrchestrator = orderworkflows.NewInlinePlacement(service)
	if temporalClient, err := DialTemporal(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline",
			slog.String("order_store", cfg.OrderStore),
			slog.String("error", err.Error()),
		)
	} else {
		defer temporalClient.Close()
		placement = orderworkflows.NewTemporalPlacement(temporalClient)
		logger.Info("Temporal workflows enabled",
			slog.String("order_store", cfg.OrderStore),
			slog.String("namespace", cfg.TemporalNamespace),
		)
	}

	router := NewRouter(RouterDeps{
		ServiceName: ServiceName,
		Version:     cfg.AppVersion,
		Orders:      orderhttp.NewHandler(service, placement, logger),
		Metrics:     instruments.MetricsHandler,
	})
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("order desk API listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("order desk API exited", slog.String("error", err.Error()))
		return err
	}
	logger.Info("order desk API stopped")
	return nil
}
