package tracing

import "sync"

// Registry is the process-wide, mutex-guarded span table of spec.md §3/§5:
// a mapping from correlation key ("{stream_id}::{id}") to a live span. It
// plays exactly the role the teacher's registry.Registry interface plays
// for service discovery -- a single shared lookup structure handed to
// every connection goroutine -- adapted from "service name -> instances"
// to "correlation key -> span", and from etcd-backed to in-process (there
// is no cluster to discover across: spec.md §5 calls for a single
// exclusive lock, not a distributed store).
//
// Every method takes and releases the lock itself; callers must never hold
// a returned Span across a suspending I/O call while believing the
// registry still owns it -- Remove already took it out.
type Registry struct {
	mu    sync.Mutex
	spans map[string]Span
}

// NewRegistry creates an empty span registry.
func NewRegistry() *Registry {
	return &Registry{spans: make(map[string]Span)}
}

// Insert stores span under key, replacing (without terminating) whatever
// was there before. spec.md §3's invariant places the burden of ending the
// old span on the caller: Insert must never be called over a live entry
// without the caller having already removed and ended it.
func (r *Registry) Insert(key string, span Span) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spans[key] = span
}

// Remove takes the span stored under key out of the registry, if any. The
// caller owns ending it -- Remove never calls End itself, so the lock is
// never held across the span's termination.
func (r *Registry) Remove(key string) (Span, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span, ok := r.spans[key]
	if ok {
		delete(r.spans, key)
	}
	return span, ok
}

// TakeAndReplace removes whatever span is stored under key (if any) and
// returns it, without inserting a replacement. Used by the
// frontend_http_request handler, which must terminate any prior span
// before creating and inserting its own under the same key.
func (r *Registry) TakeAndReplace(key string) (Span, bool) {
	return r.Remove(key)
}

// Len reports how many spans are currently live in the registry. Exposed
// for tests; spans that never get a response stay counted here, since
// spec.md §5 explicitly accepts that these leak rather than running a
// background reaper.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spans)
}
