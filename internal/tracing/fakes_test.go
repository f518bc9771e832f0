package tracing

// fakeSpan and fakeTracer let dispatcher_test.go and registry_test.go
// exercise tag extraction and span lifecycle without pulling in the real
// otel SDK -- the whole point of the narrow Tracer/Span interface in
// tracer.go.
type fakeSpan struct {
	name  string
	attrs map[string]string
	ended bool
	sc    SpanContext
}

func newFakeSpan(name string) *fakeSpan {
	return &fakeSpan{name: name, attrs: make(map[string]string)}
}

func (s *fakeSpan) SetAttribute(key, value string) { s.attrs[key] = value }
func (s *fakeSpan) Context() SpanContext            { return s.sc }
func (s *fakeSpan) End()                            { s.ended = true }

// fakeTracer never parents spans to an extracted context -- Extract always
// reports Valid: false -- which is enough to exercise the dispatcher's
// fallback-to-unparented-span path (spec.md §9's open question).
type fakeTracer struct {
	started []*fakeSpan
}

func (f *fakeTracer) Start(name string) Span {
	s := newFakeSpan(name)
	f.started = append(f.started, s)
	return s
}

func (f *fakeTracer) StartWithContext(name string, parent ExtractedContext) Span {
	return f.Start(name)
}

func (f *fakeTracer) Extract(src KVSource) ExtractedContext {
	return ExtractedContext{Valid: false}
}
