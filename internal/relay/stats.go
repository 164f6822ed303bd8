// Package relay implements the mount registry and live broadcast engine:
// the state machine of a mountpoint's life from first SOURCE attach
// through fan-out to subscribers to reap.
package relay

import "sync"

// Stats is a point-in-time snapshot of a mount's traffic counters.
// Bytes are monotonically non-decreasing across a mount's lifetime,
// including across a source swap (the new source's handle is seeded
// with the previous one's last snapshot). SubCount may decrease.
type Stats struct {
	SubCount int
	BytesIn  int64
	BytesOut int64
}

// statsHandle is the Go analogue of a single-writer, many-reader watch
// channel: the current source holds the only publish() caller, any
// number of readers call snapshot(). Ownership of "the writer side"
// is modeled explicitly via closed rather than relying on channel
// send failure, since a plain Go channel has no equivalent of a
// dropped mpsc Sender.
type statsHandle struct {
	mu     sync.RWMutex
	val    Stats
	closed chan struct{}
	once   sync.Once
}

func newStatsHandle(initial Stats) *statsHandle {
	return &statsHandle{val: initial, closed: make(chan struct{})}
}

// publish stores a new snapshot. It reports false once the handle has
// been closed (the source that owns it has been superseded or the
// mount has been reaped), at which point the caller must terminate
// rather than keep publishing to a stats handle nobody reads anymore.
func (h *statsHandle) publish(s Stats) bool {
	select {
	case <-h.closed:
		return false
	default:
	}
	h.mu.Lock()
	h.val = s
	h.mu.Unlock()
	return true
}

func (h *statsHandle) snapshot() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.val
}

func (h *statsHandle) close() {
	h.once.Do(func() { close(h.closed) })
}
