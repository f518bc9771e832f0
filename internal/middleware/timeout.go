package middleware

import (
	"log"
	"time"

	"spoa-agent/internal/spop"
)

// Timeout bounds how long a NOTIFY's dispatch is allowed to run, the same
// race-against-a-timer shape as the teacher's timeout middleware: run next
// in a goroutine, select between its result and a timer. The goroutine is
// not cancelled if the timer wins -- the underlying Tracer call, not this
// middleware, is where real cancellation would have to live -- so a
// runaway dispatch still completes in the background; this middleware only
// decides when the caller stops waiting for it.
//
// A timed-out NOTIFY gets an ACK with no actions, same degrade-safe
// rationale as RateLimit: HAProxy never blocks on tracing.
func Timeout(d time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(header spop.FrameHeader, messages []spop.Message) []spop.Action {
			done := make(chan []spop.Action, 1)
			go func() {
				done <- next(header, messages)
			}()

			select {
			case actions := <-done:
				return actions
			case <-time.After(d):
				log.Printf("notify: dispatch timed out on stream %d after %s", header.StreamID, d)
				return nil
			}
		}
	}
}
