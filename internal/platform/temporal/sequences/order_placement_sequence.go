package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	orderdomain "github.com/Apurer/order-desk-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/order-desk-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/order-desk-api/internal/platform/temporal/activities/orders"
)

// PersistOrderMaxAttempts bounds the persist activity to a single attempt.
const PersistOrderMaxAttempts = 1

// RunOrderPlacementSequence executes the activities needed to persist a new order.
func RunOrderPlacementSequence(ctx workflow.Context, input orderports.PlaceOrderInput) (*orderdomain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order placement sequence started", "email", input.Email)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		// Inserts are not idempotent. A write whose acknowledgement is lost must
		// surface as a failure, never run a second time.
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: PersistOrderMaxAttempts,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var order orderdomain.Order
	if err := workflow.ExecuteActivity(ctx, orderactivities.PersistOrderActivityName, input).Get(ctx, &order); err != nil {
		logger.Error("order placement sequence failed", "error", err)
		return nil, err
	}
	logger.Info("order placement sequence completed", "orderId", order.ID)
	return &order, nil
}
