package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect opens a MongoDB client and verifies connectivity.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("mongo URI is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// ConnectCollection dials uri and returns the named collection plus a cleanup function
// that disconnects the client.
func ConnectCollection(ctx context.Context, logger *slog.Logger, uri, database, collection string) (*mongo.Collection, func(), error) {
	client, err := Connect(ctx, uri)
	if err != nil {
		return nil, func() {}, err
	}
	if logger != nil {
		logger.Info("mongo connection established", slog.String("database", database), slog.String("collection", collection))
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(shutdownCtx); err != nil && logger != nil {
			logger.Warn("failed to disconnect mongo client", slog.String("error", err.Error()))
		}
	}
	return client.Database(database).Collection(collection), cleanup, nil
}
