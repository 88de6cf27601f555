package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/order-desk-api/internal/app/api"
	orderobs "github.com/Apurer/order-desk-api/internal/domains/orders/adapters/observability"
	orderapp "github.com/Apurer/order-desk-api/internal/domains/orders/application"
	platformobservability "github.com/Apurer/order-desk-api/internal/platform/observability"
	orderactivities "github.com/Apurer/order-desk-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/order-desk-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := run(ctx, cfg); err != nil {
		log.Fatalf("order worker failed: %v", err)
	}
}

func run(ctx context.Context, cfg api.Config) error {
	const serviceName = "order-desk-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.Options{
		ServiceName:    serviceName,
		ServiceVersion: cfg.AppVersion,
		LogLevel:       cfg.LogLevel,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repo, cleanupRepo, err := api.BuildRepository(ctx, cfg, logger)
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
	activities := orderactivities.NewActivities(service)

	temporalClient, err := api.DialTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		return err
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.PlacementTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.PlacementWorkflow, workflow.RegisterOptions{Name: orderworkflows.PlacementWorkflowName})
	w.RegisterActivityWithOptions(activities.PersistOrder, activity.RegisterOptions{Name: orderactivities.PersistOrderActivityName})

	interrupt := make(chan interface{})
	go func() {
		<-ctx.Done()
		close(interrupt)
	}()

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.PlacementTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(interrupt); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Temporal worker stopped")
	return nil
}
