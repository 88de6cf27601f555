//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/order-desk-api/internal/domains/orders/domain"
	"github.com/Apurer/order-desk-api/internal/domains/orders/ports"
	"github.com/Apurer/order-desk-api/internal/platform/migrations"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("orders_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func newOrder(t *testing.T, email string) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder("ref-"+email, "Jane", email, "1 Road", []string{"X", "Y"}, time.Now())
	require.NoError(t, err)
	return order
}

func TestRepository_InsertAndFind(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	first, err := repo.Insert(ctx, newOrder(t, "a@x.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, domain.StatusActive, first.Status)

	_, err = repo.Insert(ctx, newOrder(t, "b@x.com"))
	require.NoError(t, err)

	scoped, err := repo.Find(ctx, ports.Filter{Email: "a@x.com", Statuses: []domain.Status{domain.StatusActive}})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, first.ID, scoped[0].ID)
	assert.Equal(t, []string{"X", "Y"}, scoped[0].Items)
	assert.Equal(t, "ref-a@x.com", scoped[0].ExternalReference)

	all, err := repo.Find(ctx, ports.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
}

func TestRepository_FindOneAndUpdate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Insert(ctx, newOrder(t, "a@x.com"))
	require.NoError(t, err)

	cancelled := domain.StatusCancelled
	updated, err := repo.FindOneAndUpdate(ctx,
		ports.Selector{ID: saved.ID, Email: "a@x.com", Statuses: domain.CancellableStatuses()},
		ports.Update{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.Equal(t, []string{"X", "Y"}, updated.Items)

	address := ""
	updated, err = repo.FindOneAndUpdate(ctx,
		ports.Selector{ID: saved.ID, Email: "a@x.com", Statuses: domain.AddressMutableStatuses()},
		ports.Update{DeliveryAddress: &address})
	require.NoError(t, err)
	assert.Equal(t, "", updated.DeliveryAddress)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
}

func TestRepository_FindOneAndUpdateNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Insert(ctx, newOrder(t, "a@x.com"))
	require.NoError(t, err)
	cancelled := domain.StatusCancelled

	_, err = repo.FindOneAndUpdate(ctx, ports.Selector{ID: saved.ID, Email: "b@x.com"}, ports.Update{Status: &cancelled})
	assert.ErrorIs(t, err, ports.ErrNotFound)

	_, err = repo.FindOneAndUpdate(ctx, ports.Selector{ID: "999999", Email: "a@x.com"}, ports.Update{Status: &cancelled})
	assert.ErrorIs(t, err, ports.ErrNotFound)

	_, err = repo.FindOneAndUpdate(ctx, ports.Selector{ID: "abc", Email: "a@x.com"}, ports.Update{Status: &cancelled})
	assert.ErrorIs(t, err, ports.ErrNotFound)

	active, err := repo.Find(ctx, ports.Filter{Email: "a@x.com", Statuses: []domain.Status{domain.StatusActive}})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestRepository_ConcurrentCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Insert(ctx, newOrder(t, "a@x.com"))
	require.NoError(t, err)
	cancelled := domain.StatusCancelled

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			updated, err := repo.FindOneAndUpdate(ctx, ports.Selector{ID: saved.ID, Email: "a@x.com"}, ports.Update{Status: &cancelled})
			if assert.NoError(t, err) {
				assert.Equal(t, domain.StatusCancelled, updated.Status)
			}
		}()
	}
	wg.Wait()
}
