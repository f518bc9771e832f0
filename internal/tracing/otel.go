package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/resource"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// OtelTracer is the one implementation of Tracer allowed to import
// go.opentelemetry.io/otel directly -- the real tracing SDK this agent
// hands opaque spans off to, grounded on the original implementation's use
// of the Rust opentelemetry crate's stdout exporter (original_source's
// otel.rs) and on the pack's opentelemetry usage (other_examples' DataDog
// manifests import the same SDK family for a production collector).
type OtelTracer struct {
	tracer     oteltrace.Tracer
	propagator propagation.TextMapPropagator
}

// NewOtelTracer builds an OtelTracer reporting spans for serviceName to a
// stdout exporter, batched through an sdktrace.TracerProvider. The returned
// shutdown func must be called (e.g. with a context carrying the process's
// own shutdown deadline) to flush any spans still batched.
func NewOtelTracer(serviceName string) (*OtelTracer, func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, fmt.Errorf("tracing: build stdout exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	t := &OtelTracer{
		tracer:     provider.Tracer("spoa-agent"),
		propagator: propagation.TraceContext{},
	}
	return t, provider.Shutdown, nil
}

// Start begins an unparented span named name.
func (t *OtelTracer) Start(name string) Span {
	_, span := t.tracer.Start(context.Background(), name)
	return &otelSpan{span: span}
}

// StartWithContext begins a span named name, parented to whatever context
// Extract previously produced. parent.Valid is assumed true; callers check
// that before calling StartWithContext, per the Tracer contract.
func (t *OtelTracer) StartWithContext(name string, parent ExtractedContext) Span {
	ctx, _ := parent.inner.(context.Context)
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := t.tracer.Start(ctx, name)
	return &otelSpan{span: span}
}

// Extract pulls a W3C trace-context out of src's "traceparent"/"tracestate"
// entries, using the same propagation.TraceContext the teacher pack's
// OTel-based examples rely on for inbound context propagation. A missing or
// unparseable traceparent yields ExtractedContext{Valid: false}, per
// spec.md §9: the caller falls back to an unparented span rather than
// failing the message.
func (t *OtelTracer) Extract(src KVSource) ExtractedContext {
	ctx := t.propagator.Extract(context.Background(), kvSourceCarrier{src})
	sc := oteltrace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ExtractedContext{Valid: false}
	}
	return ExtractedContext{Valid: true, inner: ctx}
}

// kvSourceCarrier adapts a KVSource to propagation.TextMapCarrier for
// extraction only; this agent never needs to inject into a KVSource, so Set
// and Keys are unused stubs satisfying the interface.
type kvSourceCarrier struct {
	src KVSource
}

func (c kvSourceCarrier) Get(key string) string {
	v, _ := c.src.Get(key)
	return v
}

func (c kvSourceCarrier) Set(key, value string) {}

func (c kvSourceCarrier) Keys() []string { return nil }

// otelSpan adapts an oteltrace.Span to this package's narrow Span
// interface.
type otelSpan struct {
	span oteltrace.Span
}

func (s *otelSpan) SetAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

func (s *otelSpan) Context() SpanContext {
	sc := s.span.SpanContext()
	var traceID [16]byte
	var spanID [8]byte
	copy(traceID[:], sc.TraceID()[:])
	copy(spanID[:], sc.SpanID()[:])

	var flags byte
	if sc.IsSampled() {
		flags = sampledFlag
	}

	return SpanContext{
		TraceID:          traceID,
		SpanID:           spanID,
		TraceFlags:       flags,
		Valid:            sc.IsValid(),
		TraceStateHeader: sc.TraceState().String(),
	}
}

func (s *otelSpan) End() {
	s.span.End()
}
