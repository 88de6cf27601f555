package orders

import (
	"go.temporal.io/sdk/workflow"

	orderdomain "github.com/Apurer/order-desk-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/order-desk-api/internal/domains/orders/ports"
	"github.com/Apurer/order-desk-api/internal/platform/temporal/sequences"
)

const (
	// PlacementWorkflowName is the public identifier for registering the workflow.
	PlacementWorkflowName = "orders.workflows.Placement"
	// PlacementTaskQueue is the queue consumed by the worker processing order workflows.
	PlacementTaskQueue = "ORDER_PLACEMENT"
)

// PlacementWorkflowInput captures the payload required to place an order.
type PlacementWorkflowInput struct {
	Command orderports.PlaceOrderInput
	TraceID string
}

// PlacementWorkflow persists a new order durably.
func PlacementWorkflow(ctx workflow.Context, input PlacementWorkflowInput) (*orderdomain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("PlacementWorkflow started", withTraceID(input.TraceID, "email", input.Command.Email)...)
	order, err := sequences.RunOrderPlacementSequence(ctx, input.Command)
	if err != nil {
		logger.Error("PlacementWorkflow failed", withTraceID(input.TraceID, "error", err)...)
		return nil, err
	}
	logger.Info("PlacementWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID)...)
	return order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
