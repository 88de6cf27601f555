package ports

import (
	"context"

	"github.com/Apurer/order-desk-api/internal/domains/orders/domain"
)

// PlaceOrderInput carries the customer supplied fields of a new order.
type PlaceOrderInput struct {
	Name            string
	Email           string
	DeliveryAddress string
	Items           []string
}

// ListOutcome distinguishes the ways a listing can succeed.
type ListOutcome int

const (
	// OutcomeFound means at least one order matched.
	OutcomeFound ListOutcome = iota
	// OutcomeEmptyNotFound means nothing matched a scoped lookup; callers report not-found.
	OutcomeEmptyNotFound
	// OutcomeEmptyOK means nothing matched an unscoped listing; callers report an empty success.
	OutcomeEmptyOK
)

func (o ListOutcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeEmptyNotFound:
		return "empty_not_found"
	case OutcomeEmptyOK:
		return "empty_ok"
	default:
		return "unknown"
	}
}

// ListResult is a listing plus the outcome the service decided on.
type ListResult struct {
	Orders  []*domain.Order
	Outcome ListOutcome
}

// Service exposes the order use cases to driving adapters.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	ViewOrdersByEmail(ctx context.Context, email string) (ListResult, error)
	ViewAllOrders(ctx context.Context) (ListResult, error)
	CancelOrder(ctx context.Context, email, id string) (*domain.Order, error)
	ModifyAddress(ctx context.Context, email, id, newAddress string) (*domain.Order, error)
}
