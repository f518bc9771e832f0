// Package middleware implements the onion-model chain the teacher's
// mini-rpc middleware package builds, adapted to wrap NOTIFY dispatch
// instead of an RPC handler.
//
// Onion model execution order:
//
//	Chain(A, B, C)(handler)  →  A(B(C(handler)))
//
//	Request:   A.before → B.before → C.before → handler
//	Response:  handler → C.after → B.after → A.after
//
// Each middleware can do pre-processing, call next to pass through, do
// post-processing, or short-circuit by returning without calling next (the
// rate limiter's rejection path).
package middleware

import "spoa-agent/internal/spop"

// HandlerFunc is the signature shared by NOTIFY dispatch and every
// middleware-wrapped handler: given a frame header and its messages,
// produce the ACK's actions. This plays the role the teacher's
// HandlerFunc(ctx, *message.RPCMessage) *message.RPCMessage plays for an
// RPC call -- one request value in, one response value out -- adapted to
// SPOP's "many messages per NOTIFY, one action list per ACK" shape.
type HandlerFunc func(header spop.FrameHeader, messages []spop.Message) []spop.Action

// Middleware takes a handler and returns a new handler wrapping it.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middlewares into one, outermost-first: the first
// middleware passed is the outermost layer, executed first on the way in
// and last on the way out.
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
