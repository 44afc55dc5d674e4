package observability

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/scorecard-dashboard/internal/platform/envutil"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

const (
	tracerName         = "github.com/yungbote/scorecard-dashboard"
	defaultSampleRatio = 0.1
)

type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string

	Enabled     bool
	Endpoint    string
	Insecure    bool
	Headers     map[string]string
	SampleRatio float64
}

// WithEnv fills the exporter settings from the OTEL_* variables.
func (c OtelConfig) WithEnv() OtelConfig {
	c.Enabled = envutil.Bool("OTEL_ENABLED", false)
	c.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	c.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false)
	c.Headers = parseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""))
	c.SampleRatio = parseRatio(envutil.String("OTEL_SAMPLER_RATIO", ""))
	if strings.TrimSpace(c.ServiceName) == "" {
		c.ServiceName = "scorecard-dashboard"
	}
	return c
}

var (
	otelOnce     sync.Once
	otelShutdown func(context.Context) error
)

// InitOTel installs the global tracer provider once. The returned shutdown
// func is nil when tracing is disabled.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	if log == nil {
		log = logger.NewNop()
	}
	otelOnce.Do(func() {
		if !cfg.Enabled {
			return
		}
		tp := sdktrace.NewTracerProvider(providerOptions(ctx, log, cfg)...)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
		otelShutdown = tp.Shutdown
		log.Info("otel tracing initialized", "service", cfg.ServiceName, "endpoint", cfg.Endpoint, "sample_ratio", cfg.SampleRatio)
	})
	return otelShutdown
}

func providerOptions(ctx context.Context, log *logger.Logger, cfg OtelConfig) []sdktrace.TracerProviderOption {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
		attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
	))
	if err != nil {
		log.Warn("otel resource incomplete", "error", err)
	}
	if res != nil {
		opts = append(opts, sdktrace.WithResource(res))
	}
	exp, err := newExporter(ctx, cfg)
	switch {
	case err != nil:
		log.Warn("otel exporter unavailable; spans will not be exported", "error", err)
	case cfg.Endpoint == "":
		log.Warn("otel exporting to stdout; set OTEL_EXPORTER_OTLP_ENDPOINT to ship spans")
	}
	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(5*time.Second)))
	}
	return opts
}

func newExporter(ctx context.Context, cfg OtelConfig) (sdktrace.SpanExporter, error) {
	if cfg.Endpoint == "" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

// StartSpan opens a span on the global tracer. It is a no-op span until InitOTel runs.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span (when non-nil) and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}

// parseRatio clamps to [0,1]; blank or garbage gives the default.
func parseRatio(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	switch {
	case err != nil:
		return defaultSampleRatio
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// parseHeaders reads "k1=v1,k2=v2", skipping malformed pairs.
func parseHeaders(raw string) map[string]string {
	var headers map[string]string
	for _, part := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(part, "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if !ok || key == "" || val == "" {
			continue
		}
		if headers == nil {
			headers = map[string]string{}
		}
		headers[key] = val
	}
	return headers
}
