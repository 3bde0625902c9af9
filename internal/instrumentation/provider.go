package instrumentation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Provider manages OpenTelemetry instrumentation components.
type Provider struct {
	config         Config
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          metric.Meter
	tracer         trace.Tracer
	metrics        *Metrics
	auditLogger    *AuditLogger
}

// NewProvider creates a new instrumentation provider with the given configuration.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instrumentation config: %w", err)
	}

	p := &Provider{config: config}

	if !config.Enabled {
		slog.Info("Instrumentation disabled")
		p.meter = otel.Meter(TracerName)
		p.tracer = otel.Tracer(TracerName)
		p.metrics = &Metrics{}
		p.auditLogger = NewAuditLogger(config.AuditLogging)
		return p, nil
	}

	res, err := p.createResource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := p.setupMetrics(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to setup metrics: %w", err)
	}

	if err := p.setupTracing(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to setup tracing: %w", err)
	}

	p.meter = p.meterProvider.Meter(TracerName)
	p.tracer = p.tracerProvider.Tracer(TracerName)

	metrics, err := NewMetrics(p.meter, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	p.metrics = metrics
	p.auditLogger = NewAuditLogger(config.AuditLogging)

	slog.Info("Instrumentation initialized",
		"metrics_exporter", config.MetricsExporter,
		"tracing_exporter", config.TracingExporter,
		"sampling_rate", config.TraceSamplingRate)

	return p, nil
}

// createResource creates the OpenTelemetry resource describing this service
// instance.
func (p *Provider) createResource(ctx context.Context) (*resource.Resource, error) {
	instanceID := p.config.ServiceInstanceID
	if instanceID == "" {
		if hostname, err := os.Hostname(); err == nil {
			instanceID = hostname
		} else {
			instanceID = "unknown"
		}
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceName(p.config.ServiceName),
		semconv.ServiceVersion(p.config.ServiceVersion),
		semconv.ServiceInstanceID(instanceID),
	}
	if p.config.K8sNamespace != "" {
		attrs = append(attrs, semconv.K8SNamespaceName(p.config.K8sNamespace))
	}
	if p.config.K8sPodName != "" {
		attrs = append(attrs, semconv.K8SPodName(p.config.K8sPodName))
	}

	return resource.New(ctx,
		resource.WithAttributes(attrs...),
		resource.WithProcessRuntimeDescription(),
		resource.WithTelemetrySDK(),
	)
}

// setupMetrics configures the metrics provider based on the exporter type.
func (p *Provider) setupMetrics(ctx context.Context, res *resource.Resource) error {
	var reader sdkmetric.Reader

	switch p.config.MetricsExporter {
	case ExporterPrometheus:
		exporter, err := prometheus.New()
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		reader = exporter

	case ExporterOTLP:
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(p.config.OTLPEndpoint),
		}
		if p.config.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(DefaultMetricInterval))

	case ExporterStdout:
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(DefaultMetricInterval))

	default:
		return fmt.Errorf("unsupported metrics exporter: %s", p.config.MetricsExporter)
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(p.meterProvider)

	return nil
}

// setupTracing configures the tracing provider based on the exporter type.
func (p *Provider) setupTracing(ctx context.Context, res *resource.Resource) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch p.config.TracingExporter {
	case ExporterOTLP:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(p.config.OTLPEndpoint),
		}
		if p.config.OTLPInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}

	case ExporterStdout:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}

	case ExporterNone:
		// Tracing disabled; install a provider with no exporter so that
		// spans are still created (for trace IDs in audit logs) but never
		// exported.
		p.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.NeverSample()),
		)
		otel.SetTracerProvider(p.tracerProvider)
		return nil

	default:
		return fmt.Errorf("unsupported tracing exporter: %s", p.config.TracingExporter)
	}

	sampler := sdktrace.ParentBased(
		sdktrace.TraceIDRatioBased(p.config.TraceSamplingRate),
	)

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(p.tracerProvider)

	return nil
}

// Enabled reports whether instrumentation is active.
func (p *Provider) Enabled() bool {
	return p.config.Enabled
}

// Meter returns the OpenTelemetry meter for creating instruments.
func (p *Provider) Meter() metric.Meter {
	return p.meter
}

// Tracer returns the OpenTelemetry tracer for creating spans.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Metrics returns the application metrics instance.
func (p *Provider) Metrics() *Metrics {
	return p.metrics
}

// AuditLogger returns the audit logger instance.
func (p *Provider) AuditLogger() *AuditLogger {
	return p.auditLogger
}

// Shutdown gracefully shuts down the instrumentation provider, flushing any
// pending metrics and traces.
func (p *Provider) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var errs []error
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("instrumentation shutdown errors: %v", errs)
	}
	return nil
}
