package middleware

import (
	"log"
	"time"

	"spoa-agent/internal/spop"
)

// Logging records how long each NOTIFY took to dispatch and how many
// messages and actions it carried.
func Logging() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(header spop.FrameHeader, messages []spop.Message) []spop.Action {
			start := time.Now()
			actions := next(header, messages)
			log.Printf("notify: stream=%d frame=%d messages=%d actions=%d duration=%s",
				header.StreamID, header.FrameID, len(messages), len(actions), time.Since(start))
			return actions
		}
	}
}
