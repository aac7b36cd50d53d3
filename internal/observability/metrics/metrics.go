package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

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

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes the settlement engine's instruments.
type Metrics struct {
	paymentsCaptured     metric.Int64Counter
	refundsRecorded      metric.Int64Counter
	payoutsPaid          metric.Int64Counter
	cancellations        metric.Int64Counter
	concurrencyConflicts metric.Int64Counter
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

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "primabook"
	}
	meter := provider.Meter(name)

	paymentsCaptured, err := meter.Int64Counter("primabook_payments_captured_total")
	if err != nil {
		return nil, err
	}
	refundsRecorded, err := meter.Int64Counter("primabook_refunds_recorded_total")
	if err != nil {
		return nil, err
	}
	payoutsPaid, err := meter.Int64Counter("primabook_payouts_paid_total")
	if err != nil {
		return nil, err
	}
	cancellations, err := meter.Int64Counter("primabook_booking_cancellations_total")
	if err != nil {
		return nil, err
	}
	concurrencyConflicts, err := meter.Int64Counter("primabook_concurrency_conflicts_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		paymentsCaptured:     paymentsCaptured,
		refundsRecorded:      refundsRecorded,
		payoutsPaid:          payoutsPaid,
		cancellations:        cancellations,
		concurrencyConflicts: concurrencyConflicts,
	}, nil
}

// RecordPaymentCaptured increments successful capture/charge counts.
func (m *Metrics) RecordPaymentCaptured(ctx context.Context, method string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("method", strings.TrimSpace(method)))
	m.paymentsCaptured.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRefund increments recorded refund counts.
func (m *Metrics) RecordRefund(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.refundsRecorded.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPayoutPaid increments completed payout counts.
func (m *Metrics) RecordPayoutPaid(ctx context.Context) {
	if m == nil {
		return
	}
	m.payoutsPaid.Add(ctx, 1)
}

// RecordCancellation increments booking cancellation counts.
func (m *Metrics) RecordCancellation(ctx context.Context, refundIssued bool) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.Bool("refund_issued", refundIssued))
	m.cancellations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordConcurrencyConflict increments optimistic-append rejection counts.
func (m *Metrics) RecordConcurrencyConflict(ctx context.Context, aggregateType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("aggregate_type", strings.TrimSpace(aggregateType)))
	m.concurrencyConflicts.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
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

var allowedLabelKeys = map[attribute.Key]struct{}{
	"method":         {},
	"reason":         {},
	"aggregate_type": {},
	"refund_issued":  {},
	"provider":       {},
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
