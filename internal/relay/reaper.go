package relay

import (
	"log"
	"time"
)

// ReapInterval is the reaper's tick period (§4.7).
const ReapInterval = 5 * time.Second

// Reaper periodically drops non-permanent mounts whose source has
// disconnected. It has no other behavior; the logger is injected by
// the caller rather than taken from a package-level global, matching
// the teacher's constructor-injected *log.Logger convention.
type Reaper struct {
	registry *Registry
	logger   *log.Logger
	done     chan struct{}
}

func NewReaper(registry *Registry, logger *log.Logger) *Reaper {
	return &Reaper{registry: registry, logger: logger, done: make(chan struct{})}
}

// Run blocks, ticking every ReapInterval until Stop is called.
// Intended to be invoked via `go reaper.Run()`.
func (r *Reaper) Run() {
	ticker := time.NewTicker(ReapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			if n := r.registry.CleanDisconnected(); n > 0 {
				r.logger.Printf("reaper: removed %d disconnected mount(s)", n)
			}
		}
	}
}

func (r *Reaper) Stop() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}
