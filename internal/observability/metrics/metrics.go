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

// Metrics exposes application-level instruments.
type Metrics struct {
	pricingCalculations metric.Int64Counter
	distributions       metric.Int64Counter
	profitEntries       metric.Int64Counter
	rateLimitAllowed    metric.Int64Counter
	rateLimitDenied     metric.Int64Counter
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

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "smsmargin"
	}
	meter := provider.Meter(name)

	pricingCalculations, err := meter.Int64Counter("smsmargin_pricing_calculations_total")
	if err != nil {
		return nil, err
	}
	distributions, err := meter.Int64Counter("smsmargin_balance_distributions_total")
	if err != nil {
		return nil, err
	}
	profitEntries, err := meter.Int64Counter("smsmargin_profit_entries_total")
	if err != nil {
		return nil, err
	}
	rateLimitAllowed, err := meter.Int64Counter("smsmargin_rate_limit_allowed_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("smsmargin_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		pricingCalculations: pricingCalculations,
		distributions:       distributions,
		profitEntries:       profitEntries,
		rateLimitAllowed:    rateLimitAllowed,
		rateLimitDenied:     rateLimitDenied,
	}, nil
}

// RecordPricingCalculation increments pricing calculation counts.
func (m *Metrics) RecordPricingCalculation(ctx context.Context, markupType string, ruleMatched bool) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("markup_type", strings.TrimSpace(markupType)),
		attribute.Bool("rule_matched", ruleMatched),
	)
	m.pricingCalculations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDistribution increments balance distribution counts.
func (m *Metrics) RecordDistribution(ctx context.Context, distributionType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("distribution_type", strings.TrimSpace(distributionType)))
	m.distributions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordProfitEntry increments profit ledger append counts.
func (m *Metrics) RecordProfitEntry(ctx context.Context, transactionType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("transaction_type", strings.TrimSpace(transactionType)))
	m.profitEntries.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitAllowed increments rate limit allow counts.
func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
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
	"endpoint":          {},
	"markup_type":       {},
	"rule_matched":      {},
	"distribution_type": {},
	"transaction_type":  {},
	"reason":            {},
	"status_code":       {},
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
