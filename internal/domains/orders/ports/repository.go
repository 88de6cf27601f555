package ports

import (
	"context"
	"errors"

	"github.com/Apurer/order-desk-api/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// Filter narrows a Find. Zero values match everything.
type Filter struct {
	Email    string
	Statuses []domain.Status
}

// Selector identifies the single order targeted by a conditional update.
// The update applies only when ID and Email both match and, if Statuses is
// non-empty, the current status is one of them.
type Selector struct {
	ID       string
	Email    string
	Statuses []domain.Status
}

// Update lists the fields to set. Nil fields are left unchanged.
type Update struct {
	Status          *domain.Status
	DeliveryAddress *string
}

// Repository is the document store holding orders.
type Repository interface {
	// Insert atomically writes a new order and returns it with its store-assigned ID.
	Insert(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// Find returns matching orders in store-native order.
	Find(ctx context.Context, filter Filter) ([]*domain.Order, error)
	// FindOneAndUpdate applies update to the order matched by sel in one atomic
	// step and returns the post-update record, or ErrNotFound. It never inserts.
	FindOneAndUpdate(ctx context.Context, sel Selector, update Update) (*domain.Order, error)
}
