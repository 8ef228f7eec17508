package bwboot

import (
	"context"
	"sync/atomic"

	"github.com/aws-observability/aws-otel-go/exporters/xrayudp"
	"github.com/aws/aws-sdk-go-v2/aws"
	"go.opentelemetry.io/contrib/detectors/aws/lambda"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.opentelemetry.io/otel/trace/noop"
)

var noopTracer = noop.NewTracerProvider().Tracer("")

// Tracing is the tracer provider used to instrument outbound AWS calls. Tracers it
// hands out consult the on/off toggle on every span start, so switching it off after
// clients were instrumented still silences them. No global OpenTelemetry state is set.
type Tracing struct {
	embedded.TracerProvider

	sdk        *sdktrace.TracerProvider
	propagator propagation.TextMapPropagator
	enabled    atomic.Bool
}

var _ trace.TracerProvider = (*Tracing)(nil)

// NewTracing sets up the exporter selected by OTEL_EXPORTER. Tracing starts disabled.
// With OTEL_SDK_DISABLED=true no exporter is created and spans are never recorded.
func NewTracing(ctx context.Context, env Environment) (*Tracing, error) {
	t := &Tracing{propagator: NewPropagator()}
	if env.OtelDisabled {
		return t, nil
	}

	exporter, err := newExporter(ctx, env.OtelExporter)
	if err != nil {
		return nil, err
	}

	res, err := newResource(ctx, env)
	if err != nil {
		return nil, configErrorWrap("OTEL_EXPORTER", err, "detect trace resource")
	}

	// Lambda may freeze the process between invocations, so spans are exported
	// synchronously instead of batched.
	t.sdk = sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
		sdktrace.WithIDGenerator(xray.NewIDGenerator()),
	)
	return t, nil
}

// newExporter builds the span exporter. "xrayudp" is the default because spans printed
// by "stdout" share the stream the JSON logs are written to; use it for local runs only.
func newExporter(ctx context.Context, exporterType string) (sdktrace.SpanExporter, error) {
	switch exporterType {
	case "xrayudp", "":
		return xrayudp.NewSpanExporter(ctx)
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, configErrorf("OTEL_EXPORTER",
			"unsupported OTEL_EXPORTER: %q (supported: stdout, xrayudp)", exporterType)
	}
}

// newResource describes the service. Lambda attributes are detected only when the
// X-Ray exporter runs inside a Lambda function; the detector fails anywhere else.
func newResource(ctx context.Context, env Environment) (*resource.Resource, error) {
	opts := []resource.Option{resource.WithAttributes(semconv.ServiceName(env.ServiceName))}
	if env.OtelExporter != "stdout" && env.FunctionName != "" {
		opts = append(opts, resource.WithDetectors(lambda.NewResourceDetector()))
	}
	return resource.New(ctx, opts...)
}

// NewPropagator returns the propagator used for outbound calls: X-Ray first, then W3C.
func NewPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		xray.Propagator{},
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

// Enable turns span recording on.
func (t *Tracing) Enable() { t.enabled.Store(true) }

// Disable turns span recording off. Spans started afterwards are no-ops.
func (t *Tracing) Disable() { t.enabled.Store(false) }

// Enabled reports the current state of the toggle.
func (t *Tracing) Enabled() bool { return t.enabled.Load() }

// Propagator returns the propagator injected into instrumented clients.
func (t *Tracing) Propagator() propagation.TextMapPropagator { return t.propagator }

// Tracer implements trace.TracerProvider.
func (t *Tracing) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if t.sdk == nil {
		return noopTracer
	}
	return &toggleTracer{state: t, active: t.sdk.Tracer(name, opts...)}
}

// Instrument adds OpenTelemetry middlewares to cfg so every client built from it
// traces its outbound calls through t.
func (t *Tracing) Instrument(cfg *aws.Config) {
	otelaws.AppendMiddlewares(&cfg.APIOptions,
		otelaws.WithTracerProvider(t),
		otelaws.WithTextMapPropagator(t.propagator),
	)
}

// Shutdown flushes pending spans and releases the exporter.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t.sdk == nil {
		return nil
	}
	return t.sdk.Shutdown(ctx)
}

type toggleTracer struct {
	embedded.Tracer

	state  *Tracing
	active trace.Tracer
}

func (tt *toggleTracer) Start(
	ctx context.Context, name string, opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if !tt.state.Enabled() {
		return noopTracer.Start(ctx, name, opts...)
	}
	return tt.active.Start(ctx, name, opts...)
}
