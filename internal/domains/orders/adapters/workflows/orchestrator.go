package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	orderdomain "github.com/Apurer/order-desk-api/internal/domains/orders/domain"
	"github.com/Apurer/order-desk-api/internal/domains/orders/ports"
	orderworkflows "github.com/Apurer/order-desk-api/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.PlacementOrchestrator = (*TemporalPlacement)(nil)
	_ ports.PlacementOrchestrator = (*InlinePlacement)(nil)
)

// DefaultResultTimeout bounds how long a place request waits for its workflow.
const DefaultResultTimeout = 30 * time.Second

// ErrPlacementNotConfigured is returned when an orchestrator has no backend to run on.
var ErrPlacementNotConfigured = errors.New("order placement not configured")

// TemporalPlacement places orders by running the placement workflow on a
// Temporal cluster and waiting for the stored order.
type TemporalPlacement struct {
	client        client.Client
	taskQueue     string
	resultTimeout time.Duration
}

// TemporalOption customises a TemporalPlacement.
type TemporalOption func(*TemporalPlacement)

// WithResultTimeout overrides DefaultResultTimeout. Non-positive values are ignored.
func WithResultTimeout(d time.Duration) TemporalOption {
	return func(o *TemporalPlacement) {
		if d > 0 {
			o.resultTimeout = d
		}
	}
}

// NewTemporalPlacement wires a Temporal client into the orchestrator.
func NewTemporalPlacement(c client.Client, opts ...TemporalOption) *TemporalPlacement {
	o := &TemporalPlacement{
		client:        c,
		taskQueue:     orderworkflows.PlacementTaskQueue,
		resultTimeout: DefaultResultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// PlaceOrder runs one placement workflow and returns the order it stored.
//
// With an idempotency key the workflow ID is derived from the key and never
// reused, so a repeated request attaches to the first placement instead of
// inserting again: it waits for the run if it is still in flight, returns the
// stored order if it succeeded, and returns the original failure if it failed.
// A failed placement is not retried under the same key; clients send a new key.
//
// The wait is bounded by the result timeout. On expiry the request fails with
// context.DeadlineExceeded while the workflow itself may still complete.
func (o *TemporalPlacement) PlaceOrder(ctx context.Context, req ports.PlacementRequest) (*orderdomain.Order, error) {
	if o == nil || o.client == nil {
		return nil, fmt.Errorf("temporal: %w", ErrPlacementNotConfigured)
	}
	ctx, cancel := context.WithTimeout(ctx, o.resultTimeout)
	defer cancel()

	key := strings.TrimSpace(req.IdempotencyKey)
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildPlacementWorkflowID(req, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	if key != "" {
		options.WorkflowIDReusePolicy = enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.PlacementWorkflowName,
		orderworkflows.PlacementWorkflowInput{Command: req.Input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if key == "" || !errors.As(err, &alreadyStarted) {
			return nil, fmt.Errorf("start order placement %s: %w", workflowID, err)
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var order orderdomain.Order
	if err := run.Get(ctx, &order); err != nil {
		return nil, fmt.Errorf("await order placement %s: %w", workflowID, err)
	}
	return &order, nil
}

// InlinePlacement places orders synchronously through the service. It is the
// fallback whenever Temporal placement is not enabled.
type InlinePlacement struct {
	service ports.Service
}

// NewInlinePlacement wraps the orders service for synchronous execution.
func NewInlinePlacement(service ports.Service) *InlinePlacement {
	return &InlinePlacement{service: service}
}

// PlaceOrder delegates to the application service. The idempotency key is ignored.
func (o *InlinePlacement) PlaceOrder(ctx context.Context, req ports.PlacementRequest) (*orderdomain.Order, error) {
	if o == nil || o.service == nil {
		return nil, fmt.Errorf("inline: %w", ErrPlacementNotConfigured)
	}
	return o.service.PlaceOrder(ctx, req.Input)
}

func buildPlacementWorkflowID(req ports.PlacementRequest, traceComponent string) string {
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		return fmt.Sprintf("order-placement-idem-%s", hashIdempotencyKey(key))
	}
	return fmt.Sprintf("order-placement-%d-%s", time.Now().UnixNano(), traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
