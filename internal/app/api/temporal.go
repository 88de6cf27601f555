package api

import (
	"errors"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	platformobservability "github.com/Apurer/order-desk-api/internal/platform/observability"
)

var (
	// ErrTemporalDisabled is returned by DialTemporal when TEMPORAL_DISABLED is set.
	ErrTemporalDisabled = errors.New("temporal disabled via TEMPORAL_DISABLED")
	// ErrTemporalNeedsSharedStore is returned by DialTemporal for the memory store.
	// The worker persists orders in its own process, so the API would never see them.
	ErrTemporalNeedsSharedStore = errors.New("temporal placement requires ORDER_STORE=mongo or postgres")
)

// DialTemporal connects a traced Temporal client using cfg. It refuses to dial
// unless a store shared between the API and the worker is configured.
func DialTemporal(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, ErrTemporalDisabled
	}
	if cfg.OrderStore != StoreMongo && cfg.OrderStore != StorePostgres {
		return nil, ErrTemporalNeedsSharedStore
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(tracerName),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(instruments.Logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
