package tracing

import (
	"fmt"
	"log"
	"strings"

	"spoa-agent/internal/spop"
)

const (
	msgFrontendTCPRequest  = "opentracing:frontend_tcp_request"
	msgFrontendHTTPRequest = "opentracing:frontend_http_request"
	msgHTTPResponse        = "opentracing:http_response"
)

// Dispatcher implements agent.Dispatcher: it owns the span Registry and the
// Tracer, and turns each NOTIFY's messages into the ACK's actions. This is
// the direct analogue of the teacher's businessHandler, except dispatch is
// a fixed three-way switch on message name rather than a reflection-based
// service/method lookup -- NOTIFY's message names are part of the wire
// protocol, not a pluggable registration surface.
type Dispatcher struct {
	registry *Registry
	tracer   Tracer
}

// NewDispatcher builds a Dispatcher sharing registry and tracer across
// every connection goroutine that uses it.
func NewDispatcher(registry *Registry, tracer Tracer) *Dispatcher {
	return &Dispatcher{registry: registry, tracer: tracer}
}

// Dispatch processes every message in a NOTIFY frame in order -- this
// matters, per spec.md §4.7, because a frontend_http_request may terminate
// a span an earlier message in the same NOTIFY just created -- and returns
// the accumulated actions for the ACK reply (nil, not an error, for a
// NOTIFY with no recognized messages: spec.md §9 preserves that behavior).
func (d *Dispatcher) Dispatch(header spop.FrameHeader, messages []spop.Message) []spop.Action {
	var actions []spop.Action
	for _, msg := range messages {
		id, ok := messageID(msg.Args)
		if !ok {
			log.Printf("tracing: message %q on stream %d has no id, skipping", msg.Name, header.StreamID)
			continue
		}
		key := correlationKey(header.StreamID, id)

		switch msg.Name {
		case msgFrontendTCPRequest:
			d.handleFrontendTCPRequest(key, msg.Args)
		case msgFrontendHTTPRequest:
			actions = append(actions, d.handleFrontendHTTPRequest(key, msg.Args)...)
		case msgHTTPResponse:
			d.handleHTTPResponse(key)
		default:
			// Unknown message names are ignored, per spec.md §4.7.
		}
	}
	return actions
}

func (d *Dispatcher) handleFrontendTCPRequest(key string, args spop.KVList) {
	span := d.tracer.Start("frontend_tcp_request")
	extractTags(span, args)
	d.registry.Insert(key, span)
}

func (d *Dispatcher) handleFrontendHTTPRequest(key string, args spop.KVList) []spop.Action {
	if prior, ok := d.registry.TakeAndReplace(key); ok {
		prior.End()
	}

	src := kvListSource(args)
	extracted := d.tracer.Extract(src)

	var span Span
	if extracted.Valid {
		span = d.tracer.StartWithContext("frontend_http_request", extracted)
	} else {
		span = d.tracer.Start("frontend_http_request")
	}
	extractTags(span, args)
	d.registry.Insert(key, span)

	sc := span.Context()
	return []spop.Action{
		spop.SetVar(spop.ScopeRequest, "traceparent", spop.StringVal(FormatTraceparent(sc))),
		spop.SetVar(spop.ScopeRequest, "tracestate", spop.StringVal(sc.TraceStateHeader)),
	}
}

func (d *Dispatcher) handleHTTPResponse(key string) {
	span, ok := d.registry.Remove(key)
	if !ok {
		log.Printf("tracing: no span found for key %q on http_response", key)
		return
	}
	span.End()
}

// correlationKey builds the "{stream_id}::{id}" key spec.md's GLOSSARY
// defines, joining a request's span with its eventual response.
func correlationKey(streamID uint64, id string) string {
	return fmt.Sprintf("%d::%s", streamID, id)
}

// messageID returns the STRING value of the "id" entry in args, the
// correlation key's second half. A message with no "id" entry (or a
// non-string one) is skipped entirely, per spec.md §4.7.
func messageID(args spop.KVList) (string, bool) {
	v, ok := args.First("id")
	if !ok || v.Type != spop.TypeString {
		return "", false
	}
	return v.String, true
}

// kvListSource adapts a spop.KVList to the KVSource the Tracer's W3C
// extraction needs, for the "traceparent"/"tracestate" lookups.
type kvListSource spop.KVList

func (s kvListSource) Get(key string) (string, bool) {
	v, ok := spop.KVList(s).First(key)
	if !ok || v.Type != spop.TypeString {
		return "", false
	}
	return v.String, true
}

// extractTags runs the order-sensitive tag-extraction state machine of
// spec.md §4.7 over args and calls span.SetAttribute for every tag it
// closes, plus the "id" entry's two synthetic server.* tags.
//
// Only "tag"/"" pairs build up attribute values; every other non-empty,
// non-"tag" key closes whatever tag is open without itself becoming an
// attribute -- except "id", which additionally seeds server.tx_id (and
// server.name, when the id contains a ':') regardless of tag state.
func extractTags(span Span, args spop.KVList) {
	var currentTag string
	var accumulator strings.Builder
	tagOpen := false

	commit := func() {
		if tagOpen {
			span.SetAttribute(currentTag, accumulator.String())
			tagOpen = false
			accumulator.Reset()
		}
	}

	for _, p := range args {
		switch {
		case p.Name == "tag":
			commit()
			currentTag = spop.Stringify(p.Value)
			tagOpen = true
		case p.Name != "":
			commit()
			if p.Name == "id" {
				txID := spop.Stringify(p.Value)
				span.SetAttribute("server.tx_id", txID)
				if idx := strings.IndexByte(txID, ':'); idx >= 0 {
					span.SetAttribute("server.name", txID[:idx])
				}
			}
		default: // p.Name == ""
			if tagOpen {
				accumulator.WriteString(spop.Stringify(p.Value))
			}
		}
	}
	commit()
}
