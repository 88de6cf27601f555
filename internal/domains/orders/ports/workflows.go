package ports

import (
	"context"

	"github.com/Apurer/order-desk-api/internal/domains/orders/domain"
)

// PlacementRequest is a place-order call plus an optional client idempotency key.
type PlacementRequest struct {
	Input          PlaceOrderInput
	IdempotencyKey string
}

// PlacementOrchestrator runs order placement, either inline or as a durable workflow.
type PlacementOrchestrator interface {
	PlaceOrder(ctx context.Context, req PlacementRequest) (*domain.Order, error)
}
