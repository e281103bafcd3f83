package otel

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	defaultServiceName = "cms-search"
	defaultEndpoint    = "http://localhost:4318"
	defaultSampleRatio = 0.1
)

// Search requests finish in milliseconds; a tenant reindex can take minutes.
var (
	searchBuckets  = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
	reindexBuckets = []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600}
)

// EnvSource resolves a setting by key. driver.EnvDriver satisfies it and honors KEY_FILE.
type EnvSource interface {
	GetEnv(key string) string
}

// Config holds OpenTelemetry configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	// Headers go to every exporter, e.g. a collector auth token.
	Headers     map[string]string
	Enabled     bool
	SampleRatio float64
}

// ConfigFromEnv reads the standard OTEL_* variables through env.
func ConfigFromEnv(env EnvSource) Config {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(env.GetEnv(key)); v != "" {
			return v
		}
		return fallback
	}

	sampleRatio := defaultSampleRatio
	if f, err := strconv.ParseFloat(get("OTEL_TRACE_SAMPLE_RATIO", ""), 64); err == nil && f >= 0 && f <= 1 {
		sampleRatio = f
	}

	return Config{
		ServiceName:    get("OTEL_SERVICE_NAME", defaultServiceName),
		ServiceVersion: get("SERVICE_VERSION", "0.0.0"),
		Environment:    get("DEPLOYMENT_ENV", "development"),
		OTLPEndpoint:   strings.TrimRight(get("OTEL_EXPORTER_OTLP_ENDPOINT", defaultEndpoint), "/"),
		Headers:        parseHeaders(get("OTEL_EXPORTER_OTLP_HEADERS", "")),
		Enabled:        get("OTEL_ENABLED", "false") == "true",
		SampleRatio:    sampleRatio,
	}
}

// parseHeaders reads the "k1=v1,k2=v2" form, with url-escaped values.
func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		if decoded, err := url.QueryUnescape(strings.TrimSpace(value)); err == nil {
			value = decoded
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers
}

// insecure reports whether the collector is reached over plain HTTP.
func (c Config) insecure() bool {
	u, err := url.Parse(c.OTLPEndpoint)
	return err != nil || u.Scheme != "https"
}

func (c Config) signalURL(signal string) string {
	return c.OTLPEndpoint + "/v1/" + signal
}

// ShutdownFunc is a function to shutdown providers
type ShutdownFunc func(context.Context) error

// InitProvider installs the global tracer, logger and meter providers. When disabled
// it installs nothing and Metrics stays nil.
func InitProvider(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
		resource.WithHost(),
		resource.WithProcess(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdowns {
			errs = append(errs, fn(ctx))
		}
		return errors.Join(errs...)
	}
	fail := func(step string, err error) (ShutdownFunc, error) {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("failed to init %s: %w", step, err)
	}

	tracerProvider, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		return fail("tracer provider", err)
	}
	shutdowns = append(shutdowns, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	loggerProvider, err := newLoggerProvider(ctx, cfg, res)
	if err != nil {
		return fail("logger provider", err)
	}
	shutdowns = append(shutdowns, loggerProvider.Shutdown)
	global.SetLoggerProvider(loggerProvider)

	meterProvider, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		return fail("meter provider", err)
	}
	shutdowns = append(shutdowns, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	if err := InitMetrics(); err != nil {
		return fail("metrics", err)
	}

	return shutdown, nil
}

func newTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(cfg.signalURL("traces")),
		otlptracehttp.WithHeaders(cfg.Headers),
	}
	if cfg.insecure() {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	), nil
}

func newLoggerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	opts := []otlploghttp.Option{
		otlploghttp.WithEndpointURL(cfg.signalURL("logs")),
		otlploghttp.WithHeaders(cfg.Headers),
	}
	if cfg.insecure() {
		opts = append(opts, otlploghttp.WithInsecure())
	}
	exporter, err := otlploghttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter, sdklog.WithExportInterval(5*time.Second))),
		sdklog.WithResource(res),
	), nil
}

func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(cfg.signalURL("metrics")),
		otlpmetrichttp.WithHeaders(cfg.Headers),
	}
	if cfg.insecure() {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))
	return sdkmetric.NewMeterProvider(meterProviderOptions(reader, res)...), nil
}

// meterProviderOptions attaches the duration bucket views to reader.
func meterProviderOptions(reader sdkmetric.Reader, res *resource.Resource) []sdkmetric.Option {
	opts := []sdkmetric.Option{sdkmetric.WithReader(reader)}
	if res != nil {
		opts = append(opts, sdkmetric.WithResource(res))
	}
	for _, v := range durationViews() {
		opts = append(opts, sdkmetric.WithView(v))
	}
	return opts
}

func durationViews() []sdkmetric.View {
	bucketView := func(name string, bounds []float64) sdkmetric.View {
		return sdkmetric.NewView(
			sdkmetric.Instrument{Name: name, Kind: sdkmetric.InstrumentKindHistogram},
			sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: bounds}},
		)
	}
	return []sdkmetric.View{
		bucketView(MetricSearchDuration, searchBuckets),
		bucketView(MetricReindexDuration, reindexBuckets),
	}
}
