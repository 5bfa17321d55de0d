package telemetry

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const instrumentationName = "github.com/Veraticus/budget-mapper"

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid telemetry config")

// Config controls trace export to a Langfuse (or any OTLP/HTTP) endpoint.
type Config struct {
	Endpoint       string
	URLPath        string
	PublicKey      string
	SecretKey      string
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	Insecure       bool
}

// DefaultConfig returns settings for a local Langfuse instance.
func DefaultConfig() Config {
	return Config{
		Endpoint:    "localhost:3001",
		URLPath:     "/api/public/otel/v1/traces",
		ServiceName: "budget-mapper",
		Insecure:    true,
	}
}

// Validate checks the config. Disabled configs are always valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.PublicKey) == "" {
		return fmt.Errorf("%w: public key is required", ErrInvalidConfig)
	}
	if c.ServiceName == "" {
		return fmt.Errorf("%w: service name is required", ErrInvalidConfig)
	}
	return nil
}

// Provider owns the tracer provider. A Provider with tracing disabled or
// degraded hands out NopSinks.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
	logger         *slog.Logger
}

// New creates a provider. Exporter setup failures are logged and degrade to
// a disabled provider rather than failing the caller.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{logger: logger}
	if !cfg.Enabled {
		logger.Debug("tracing disabled")
		return p, nil
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(stripScheme(cfg.Endpoint)),
		otlptracehttp.WithHeaders(map[string]string{
			"Authorization": "Basic " + basicAuth(cfg.PublicKey, cfg.SecretKey),
		}),
	}
	if cfg.URLPath != "" {
		opts = append(opts, otlptracehttp.WithURLPath(cfg.URLPath))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		logger.Warn("tracing disabled: exporter setup failed", "error", err)
		return p, nil
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	)

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	logger.Info("tracing enabled", "endpoint", cfg.Endpoint)
	return p, nil
}

// NewWithTracerProvider wraps an existing tracer provider, mainly for tests.
func NewWithTracerProvider(tp *sdktrace.TracerProvider, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{tracerProvider: tp, logger: logger}
}

// Enabled reports whether spans are being recorded.
func (p *Provider) Enabled() bool {
	return p != nil && p.tracerProvider != nil
}

// Sink returns the sink to hand to the pipeline.
func (p *Provider) Sink() Sink {
	if !p.Enabled() {
		return NopSink{}
	}
	return Safe(NewOTelSink(p.tracerProvider.Tracer(instrumentationName)), p.logger)
}

// Shutdown flushes pending spans. Errors are logged, not returned, because
// an unreachable trace backend must not fail a categorization run.
func (p *Provider) Shutdown(ctx context.Context) {
	if !p.Enabled() {
		return
	}
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		p.logger.Warn("failed to flush traces", "error", err)
	}
}

func basicAuth(user, pass string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
}

func stripScheme(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "http://")
	return strings.TrimPrefix(endpoint, "https://")
}
