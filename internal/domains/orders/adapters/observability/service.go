package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	orderdomain "github.com/Apurer/order-desk-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/order-desk-api/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/order-desk-api/internal/domains/orders/adapters/observability/service"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, input orderports.PlaceOrderInput) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder",
		trace.WithAttributes(attribute.Int("order.items", len(input.Items))))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.Int("order.items", len(input.Items)))
	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order")
	}
	span.SetAttributes(attribute.String("order.id", result.ID), attribute.String("order.reference", result.ExternalReference))
	s.metrics.recordPlaced(ctx)
	s.logInfo(ctx, "order placed", slog.String("order.id", result.ID), slog.String("order.reference", result.ExternalReference))
	return result, nil
}

func (s *Service) ViewOrdersByEmail(ctx context.Context, email string) (orderports.ListResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ViewOrdersByEmail")
	defer span.End()

	s.logInfo(ctx, "listing orders by email")
	result, err := s.inner.ViewOrdersByEmail(ctx, email)
	if err != nil {
		return orderports.ListResult{}, s.handleError(ctx, span, err, "failed to list orders by email")
	}
	span.SetAttributes(attribute.Int("orders.count", len(result.Orders)), attribute.String("orders.outcome", result.Outcome.String()))
	s.logInfo(ctx, "orders listed", slog.Int("orders.count", len(result.Orders)), slog.String("outcome", result.Outcome.String()))
	return result, nil
}

func (s *Service) ViewAllOrders(ctx context.Context) (orderports.ListResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ViewAllOrders")
	defer span.End()

	result, err := s.inner.ViewAllOrders(ctx)
	if err != nil {
		return orderports.ListResult{}, s.handleError(ctx, span, err, "failed to list all orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(result.Orders)), attribute.String("orders.outcome", result.Outcome.String()))
	s.logInfo(ctx, "all active orders listed", slog.Int("orders.count", len(result.Orders)))
	return result, nil
}

func (s *Service) CancelOrder(ctx context.Context, email, id string) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CancelOrder", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	s.logInfo(ctx, "cancelling order", slog.String("order.id", id))
	result, err := s.inner.CancelOrder(ctx, email, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel order", slog.String("order.id", id))
	}
	s.metrics.recordCancelled(ctx)
	s.logInfo(ctx, "order cancelled", slog.String("order.id", result.ID), slog.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) ModifyAddress(ctx context.Context, email, id, newAddress string) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ModifyAddress", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	s.logInfo(ctx, "modifying delivery address", slog.String("order.id", id))
	result, err := s.inner.ModifyAddress(ctx, email, id, newAddress)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to modify delivery address", slog.String("order.id", id))
	}
	s.metrics.recordAddressModified(ctx, result.Status)
	s.logInfo(ctx, "delivery address modified", slog.String("order.id", result.ID))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, level slog.Level, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

// handleError records err on the span. Not-found is an expected outcome and is logged as a warning.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if errors.Is(err, orderports.ErrNotFound) {
		s.logError(ctx, slog.LevelWarn, msg, err, attrs...)
		return err
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, slog.LevelError, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	ordersPlaced     metric.Int64Counter
	ordersCancelled  metric.Int64Counter
	addressesChanged metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("orders.service.placed", metric.WithDescription("Number of orders placed"))
	ordersCancelled, _ := m.Int64Counter("orders.service.cancelled", metric.WithDescription("Number of successful cancel requests"))
	addressesChanged, _ := m.Int64Counter("orders.service.address_modified", metric.WithDescription("Number of delivery address changes"))
	return serviceMetrics{ordersPlaced: ordersPlaced, ordersCancelled: ordersCancelled, addressesChanged: addressesChanged}
}

func (m serviceMetrics) recordPlaced(ctx context.Context) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordCancelled(ctx context.Context) {
	if m.ordersCancelled != nil {
		m.ordersCancelled.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordAddressModified(ctx context.Context, status orderdomain.Status) {
	if m.addressesChanged != nil {
		m.addressesChanged.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

var _ orderports.Service = (*Service)(nil)
