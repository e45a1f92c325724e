package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultServiceName is used when no service name is configured.
const DefaultServiceName = "expert"

const (
	exportTimeout  = 10 * time.Second
	batchTimeout   = 5 * time.Second
	metricInterval = 15 * time.Second
)

// Config holds observability configuration.
type Config struct {
	Enabled     bool       // export traces, metrics and logs over OTLP/HTTP
	ServiceName string     // defaults to DefaultServiceName
	LogLevel    slog.Level // minimum level for the stdout logger
	Output      io.Writer  // stdout logger destination (default: os.Stdout)
}

func (c Config) serviceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// Telemetry owns the installed providers and the process logger.
type Telemetry struct {
	Logger *slog.Logger

	shutdowns []func(context.Context) error
}

// Shutdown flushes and stops every provider, in reverse order of creation.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(t.shutdowns) - 1; i >= 0; i-- {
		errs = append(errs, t.shutdowns[i](ctx))
	}
	t.shutdowns = nil
	return errors.Join(errs...)
}

// Setup installs the global tracer and meter providers and builds the logger.
//
// Disabled, the providers record nothing remotely and the logger writes JSON
// to cfg.Output. Enabled, traces, metrics and logs are exported over OTLP/HTTP
// using the standard OTEL_EXPORTER_OTLP_* variables, and the logger goes
// through the otelslog bridge. Credentials are redacted on both paths.
func Setup(ctx context.Context, cfg Config) (*Telemetry, error) {
	if !cfg.Enabled {
		return setupLocal(cfg), nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	t := &Telemetry{}
	fail := func(err error) (*Telemetry, error) {
		_ = t.Shutdown(ctx)
		return nil, err
	}

	traceExporter, err := otlptracehttp.New(ctx, otlptracehttp.WithTimeout(exportTimeout))
	if err != nil {
		return fail(fmt.Errorf("failed to create trace exporter: %w", err))
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter, sdktrace.WithBatchTimeout(batchTimeout)),
	)
	t.shutdowns = append(t.shutdowns, tp.Shutdown)

	metricExporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithTimeout(exportTimeout))
	if err != nil {
		return fail(fmt.Errorf("failed to create metric exporter: %w", err))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(metricInterval))),
	)
	t.shutdowns = append(t.shutdowns, mp.Shutdown)

	logExporter, err := otlploghttp.New(ctx, otlploghttp.WithTimeout(exportTimeout))
	if err != nil {
		return fail(fmt.Errorf("failed to create log exporter: %w", err))
	}
	lp := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter, sdklog.WithExportTimeout(batchTimeout))),
	)
	t.shutdowns = append(t.shutdowns, lp.Shutdown)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	bridge := otelslog.NewHandler(cfg.serviceName(), otelslog.WithLoggerProvider(lp))
	t.Logger = slog.New(NewRedactHandler(bridge))
	return t, nil
}

// setupLocal keeps instrumentation callable without exporting anything.
func setupLocal(cfg Config) *Telemetry {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	tp := sdktrace.NewTracerProvider()
	mp := sdkmetric.NewMeterProvider()
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: newRedactAttr(),
	})
	return &Telemetry{
		Logger:    slog.New(handler),
		shutdowns: []func(context.Context) error{tp.Shutdown, mp.Shutdown},
	}
}

// newResource merges the SDK defaults with the service name. Values from
// OTEL_RESOURCE_ATTRIBUTES and OTEL_SERVICE_NAME take precedence.
func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	svc, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.serviceName())),
		resource.WithFromEnv(),
		resource.WithSchemaURL(semconv.SchemaURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service resource: %w", err)
	}

	res, err := resource.Merge(resource.Default(), svc)
	if err != nil && !errors.Is(err, resource.ErrPartialResource) && !errors.Is(err, resource.ErrSchemaURLConflict) {
		return nil, fmt.Errorf("failed to merge resources: %w", err)
	}
	return res, nil
}
