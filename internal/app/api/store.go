package api

import (
	"context"
	"fmt"
	"log/slog"

	ordermemory "github.com/Apurer/order-desk-api/internal/domains/orders/adapters/memory"
	ordermongo "github.com/Apurer/order-desk-api/internal/domains/orders/adapters/persistence/mongo"
	orderpostgres "github.com/Apurer/order-desk-api/internal/domains/orders/adapters/persistence/postgres"
	orderports "github.com/Apurer/order-desk-api/internal/domains/orders/ports"
	platformmongo "github.com/Apurer/order-desk-api/internal/platform/mongo"
	platformpostgres "github.com/Apurer/order-desk-api/internal/platform/postgres"
)

// BuildRepository opens the store selected by cfg.OrderStore. The returned cleanup
// releases the store handle and is always safe to call.
func BuildRepository(ctx context.Context, cfg Config, logger *slog.Logger) (orderports.Repository, func(), error) {
	switch cfg.OrderStore {
	case StoreMongo:
		coll, cleanup, err := platformmongo.ConnectCollection(ctx, logger, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, func() {}, fmt.Errorf("connect mongo: %w", err)
		}
		logger.Info("order repository configured with mongo")
		return ordermongo.NewRepository(coll), cleanup, nil
	case StorePostgres:
		db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, func() {}, fmt.Errorf("connect postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, func() {}, fmt.Errorf("unwrap postgres connection: %w", err)
		}
		logger.Info("order repository configured with postgres")
		return orderpostgres.NewRepository(db), func() { _ = sqlDB.Close() }, nil
	default:
		logger.Warn("no persistent order store configured, using in-memory repository")
		return ordermemory.NewRepository(), func() {}, nil
	}
}
