package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	orderapp "github.com/Apurer/order-desk-api/internal/domains/orders/application"
	orderdomain "github.com/Apurer/order-desk-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/order-desk-api/internal/domains/orders/ports"
)

const (
	// PersistOrderActivityName inserts a new order through the application service.
	PersistOrderActivityName = "orders.activities.PersistOrder"

	invalidOrderErrorType = "InvalidOrderInput"
)

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service orderports.Service
}

// NewActivities wires the orders service into the Temporal activities bundle.
func NewActivities(service orderports.Service) *Activities {
	return &Activities{service: service}
}

// PersistOrder places the order and returns the stored record.
// Invalid input is reported as non-retryable.
func (a *Activities) PersistOrder(ctx context.Context, input orderports.PlaceOrderInput) (*orderdomain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order persist activity not initialized")
		return nil, errors.New("order persist activity not initialized")
	}
	logger.Info("PersistOrder activity started", "email", input.Email)
	order, err := a.service.PlaceOrder(ctx, input)
	if err != nil {
		logger.Error("PersistOrder activity failed", "error", err)
		if errors.Is(err, orderapp.ErrInvalidInput) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), invalidOrderErrorType, err)
		}
		return nil, err
	}
	logger.Info("PersistOrder activity completed", "orderId", order.ID)
	return order, nil
}
