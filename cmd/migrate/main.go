package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/order-desk-api/internal/app/api"
	ordermongo "github.com/Apurer/order-desk-api/internal/domains/orders/adapters/persistence/mongo"
	"github.com/Apurer/order-desk-api/internal/platform/migrations"
	platformmongo "github.com/Apurer/order-desk-api/internal/platform/mongo"
	platformobservability "github.com/Apurer/order-desk-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/order-desk-api/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logger := platformobservability.NewLogger(os.Stdout, cfg.LogLevel)

	switch cfg.OrderStore {
	case api.StorePostgres:
		db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := migrations.Run(db); err != nil {
			log.Fatalf("failed to apply postgres schema: %v", err)
		}
		logger.Info("postgres schema applied")
	case api.StoreMongo:
		coll, cleanup, err := platformmongo.ConnectCollection(ctx, logger, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer cleanup()
		if err := ordermongo.NewRepository(coll).EnsureIndexes(ctx); err != nil {
			log.Fatalf("failed to create mongo indexes: %v", err)
		}
		logger.Info("mongo indexes ensured", slog.String("collection", cfg.MongoCollection))
	default:
		logger.Info("in-memory order store needs no migration")
	}
}
