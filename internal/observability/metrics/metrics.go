package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Resolution outcomes.
const (
	OutcomeReplied = "replied"
	OutcomeEmpty   = "empty"
	OutcomeFailed  = "failed"
)

// Mutation outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
}

// Metrics exposes bot-level instruments. Every counter is recorded both on the
// otel meter (exported over OTLP when enabled) and on a Prometheus registry
// (served from /metrics). A nil *Metrics records nothing.
type Metrics struct {
	resolutions   metric.Int64Counter
	mutations     metric.Int64Counter
	counterErrors metric.Int64Counter

	promResolutions   *prometheus.CounterVec
	promMutations     *prometheus.CounterVec
	promCounterErrors *prometheus.CounterVec
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the bot instruments on provider and registers the
// Prometheus collectors on reg. Collectors already present on reg are reused.
func New(cfg Config, provider metric.MeterProvider, reg prometheus.Registerer) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "tanaka"
	}
	meter := provider.Meter(name)

	resolutions, err := meter.Int64Counter("tanaka_resolutions_total")
	if err != nil {
		return nil, err
	}
	mutations, err := meter.Int64Counter("tanaka_mutations_total")
	if err != nil {
		return nil, err
	}
	counterErrors, err := meter.Int64Counter("tanaka_counter_errors_total")
	if err != nil {
		return nil, err
	}

	promResolutions, err := registerCounterVec(reg, prometheus.CounterOpts{
		Name: "tanaka_resolutions_total",
		Help: "Command invocations by resolution outcome.",
	}, "outcome")
	if err != nil {
		return nil, err
	}
	promMutations, err := registerCounterVec(reg, prometheus.CounterOpts{
		Name: "tanaka_mutations_total",
		Help: "Write-side verbs by outcome.",
	}, "verb", "outcome")
	if err != nil {
		return nil, err
	}
	promCounterErrors, err := registerCounterVec(reg, prometheus.CounterOpts{
		Name: "tanaka_counter_errors_total",
		Help: "Swallowed counter store failures by operation.",
	}, "op")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		resolutions:       resolutions,
		mutations:         mutations,
		counterErrors:     counterErrors,
		promResolutions:   promResolutions,
		promMutations:     promMutations,
		promCounterErrors: promCounterErrors,
	}, nil
}

// RecordResolution counts one invocation of an unknown verb.
func (m *Metrics) RecordResolution(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.resolutions.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("outcome", outcome))...))
	m.promResolutions.WithLabelValues(outcome).Inc()
}

// RecordMutation counts one add/remove/alias verb.
func (m *Metrics) RecordMutation(ctx context.Context, verb, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("verb", verb),
		attribute.String("outcome", outcome),
	)
	m.mutations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.promMutations.WithLabelValues(verb, outcome).Inc()
}

// RecordCounterError counts a counter store failure that was swallowed.
func (m *Metrics) RecordCounterError(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.counterErrors.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("op", op))...))
	m.promCounterErrors.WithLabelValues(op).Inc()
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels ...string) (*prometheus.CounterVec, error) {
	vec := prometheus.NewCounterVec(opts, labels)
	if reg == nil {
		return vec, nil
	}
	if err := reg.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return vec, nil
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

// Guild ids and command names are unbounded, so they never become labels.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"outcome": {},
	"verb":    {},
	"op":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
