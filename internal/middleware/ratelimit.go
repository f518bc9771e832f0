package middleware

import (
	"log"

	"golang.org/x/time/rate"

	"spoa-agent/internal/spop"
)

// RateLimit bounds how many NOTIFYs per second this agent will dispatch,
// using the same token-bucket limiter the teacher's rate-limit middleware
// builds over golang.org/x/time/rate. The limiter is created once in this
// outer closure, shared across every NOTIFY on every connection -- creating
// it per-call would hand every request a fresh full bucket and defeat the
// limit entirely.
//
// A rejected NOTIFY still gets an ACK (SPOP has no "reject this frame"
// reply), just with no actions: HAProxy proceeds as if tracing produced
// nothing for that request, which is a safe degradation under overload.
func RateLimit(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(header spop.FrameHeader, messages []spop.Message) []spop.Action {
			if !limiter.Allow() {
				log.Printf("notify: rate limit exceeded on stream %d, dropping %d message(s)", header.StreamID, len(messages))
				return nil
			}
			return next(header, messages)
		}
	}
}
