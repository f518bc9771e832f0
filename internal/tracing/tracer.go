package tracing

import "fmt"

// This file is the narrow interface boundary spec.md §6 draws around the
// tracing SDK: the dispatcher in dispatcher.go only ever talks to a Tracer
// and the Spans it hands back, never to go.opentelemetry.io/otel directly.
// otel.go is the one file in this package allowed to import the SDK.

// KVSource is a minimal key-lookup source, enough for W3C trace-context
// extraction from a message body without exposing the whole KVList type to
// the tracing-SDK boundary.
type KVSource interface {
	Get(key string) (string, bool)
}

// SpanContext is the span identity spec.md §4.7 needs to format the
// traceparent/tracestate values it injects back into the proxy stream.
type SpanContext struct {
	TraceID          [16]byte
	SpanID           [8]byte
	TraceFlags       byte
	Valid            bool
	TraceStateHeader string
}

const sampledFlag byte = 0x01

// Span is the narrow per-span capability set the dispatcher needs: attach
// attributes (tag extraction results), read back its own context (to
// format outgoing trace-context actions), and terminate.
type Span interface {
	SetAttribute(key, value string)
	Context() SpanContext
	End()
}

// ExtractedContext is the opaque result of W3C trace-context extraction.
// Only a Tracer implementation may inspect it (via its own concrete type);
// the dispatcher only ever checks Valid.
type ExtractedContext struct {
	Valid bool
	inner any
}

// Tracer is the abstract capability set spec.md §6 names: start a root
// span, start a span parented to an extracted context, and extract a
// context from a key-lookup source.
type Tracer interface {
	Start(name string) Span
	StartWithContext(name string, parent ExtractedContext) Span
	Extract(src KVSource) ExtractedContext
}

// FormatTraceparent renders sc as a W3C traceparent header value:
// "{version:02x}-{trace_id:032x}-{span_id:016x}-{flags:02x}" with
// version=0 and flags restricted to the SAMPLED bit, per spec.md §4.7.
func FormatTraceparent(sc SpanContext) string {
	flags := sc.TraceFlags & sampledFlag
	return fmt.Sprintf("%02x-%032x-%016x-%02x", 0, sc.TraceID, sc.SpanID, flags)
}
