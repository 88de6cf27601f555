package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Apurer/order-desk-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/order-desk-api/internal/domains/orders/application"
	"github.com/Apurer/order-desk-api/internal/domains/orders/ports"
)

func newDecorated(t *testing.T) (ports.Service, *tracetest.SpanRecorder, *sdkmetric.ManualReader, *bytes.Buffer) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	svc := New(application.NewService(memory.NewRepository()),
		WithLogger(logger),
		WithTracer(tp.Tracer("test")),
		WithMeter(mp.Meter("test")),
	)
	return svc, recorder, reader, &logs
}

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestService_RecordsSpansAndCounters(t *testing.T) {
	svc, recorder, reader, logs := newDecorated(t)
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, ports.PlaceOrderInput{Name: "n", Email: "a@x.com", DeliveryAddress: "addr", Items: []string{"X"}})
	require.NoError(t, err)
	_, err = svc.CancelOrder(ctx, "a@x.com", placed.ID)
	require.NoError(t, err)

	names := make([]string, 0)
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Equal(t, []string{"OrderService.PlaceOrder", "OrderService.CancelOrder"}, names)
	assert.Equal(t, int64(1), counterValue(t, reader, "orders.service.placed"))
	assert.Equal(t, int64(1), counterValue(t, reader, "orders.service.cancelled"))
	assert.Contains(t, logs.String(), "order placed")
}

func TestService_NotFoundPassesThroughWithoutSpanError(t *testing.T) {
	svc, recorder, reader, _ := newDecorated(t)

	_, err := svc.CancelOrder(context.Background(), "a@x.com", "missing")
	require.True(t, errors.Is(err, ports.ErrNotFound))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Empty(t, spans[0].Events())
	assert.Equal(t, int64(0), counterValue(t, reader, "orders.service.cancelled"))
}

func TestService_PlaceFailureMarksSpan(t *testing.T) {
	svc, recorder, _, logs := newDecorated(t)

	_, err := svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{Email: "a@x.com"})
	require.ErrorIs(t, err, application.ErrPlaceOrder)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "Error", spans[0].Status().Code.String())
	assert.Contains(t, logs.String(), "failed to place order")
}
