package relay

import (
	"sync"

	"github.com/google/uuid"
)

// subEntry is one subscriber's delivery channel plus the signal it
// raises when its sink pump exits, for any reason. The source's
// sweep (§4.5.3) uses done to decide whether to drop this entry from
// the broadcast list; it never inspects ch directly.
type subEntry struct {
	id       uuid.UUID
	ch       chan []byte
	done     chan struct{}
	doneOnce sync.Once
	chOnce   sync.Once
}

func newSubEntry(bufferSize int) *subEntry {
	return &subEntry{id: uuid.New(), ch: make(chan []byte, bufferSize), done: make(chan struct{})}
}

// markDone is called by the sink pump, exactly once, when it stops
// reading ch for any reason. The source's broadcast loop polls
// isClosed to decide when to drop this entry.
func (s *subEntry) markDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *subEntry) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// closeChannel is called by the source - the only writer - either
// when it notices the sink is done, or when the source pump itself
// exits and drops every remaining subscriber. Closing ch is what the
// sink pump's range loop observes as "source disconnected" (§4.5.2).
func (s *subEntry) closeChannel() {
	s.chOnce.Do(func() { close(s.ch) })
}

// subRegistrationBuffer bounds the subscriber-registration channel
// (mpsc in the original design). A slot is consumed the instant the
// source's registration sub-task runs; 64 comfortably absorbs a burst
// of simultaneous GET attaches without the sender blocking.
const subRegistrationBuffer = 64

// sourceSession is the bundle of state owned by exactly one SOURCE
// attach: the registration channel subscribers use to join, the
// content-type and metadata captured at attach time, and the stats
// handle this source publishes to. Mount.SetSource atomically swaps
// the mount's current session and closes the superseded one's stats
// handle so the old source observes a failed publish and terminates
// (SPEC_FULL §4.2 invariant on set_source).
type sourceSession struct {
	id          uuid.UUID
	contentType string
	meta        IceMeta
	subsSink    chan *subEntry
	stats       *statsHandle
}

// StreamURL is the tagged policy for deriving a mount's user-visible
// URL in the inventory (§4.9).
type StreamURL struct {
	Kind   StreamURLKind
	Static string
}

type StreamURLKind int

const (
	StreamURLHostname StreamURLKind = iota
	StreamURLXForwardedHostName
	StreamURLStatic
)

// Mount is one mountpoint's live state. All fields are guarded by mu
// except the identifying path, which is immutable after construction.
type Mount struct {
	mu sync.RWMutex

	path       string
	permanent  bool
	sourceAuth *string
	subAuth    *string
	streamURL  *StreamURL
	song       *string

	session   *sourceSession
	lastStats Stats
}

// NewMount constructs a Mount as it exists before any source has
// attached: the startup-time placeholder described in §3's Lifecycle
// clause (a).
func NewMount(path string, permanent bool, sourceAuth, subAuth *string, streamURL *StreamURL) *Mount {
	return &Mount{
		path:       path,
		permanent:  permanent,
		sourceAuth: sourceAuth,
		subAuth:    subAuth,
		streamURL:  streamURL,
	}
}

func (m *Mount) Path() string { return m.path }

func (m *Mount) Permanent() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.permanent
}

func (m *Mount) SourceAuth() *string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sourceAuth
}

func (m *Mount) SubAuth() *string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.subAuth
}

func (m *Mount) StreamURLPolicy() *StreamURL {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.streamURL
}

func (m *Mount) Song() *string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.song
}

// SetSong is the only admin-writable mutation (§4.6 step 7).
func (m *Mount) SetSong(song string) {
	m.mu.Lock()
	m.song = &song
	m.mu.Unlock()
}

// IsConnected reports whether a source currently owns this mount, per
// the §3 invariant: losing the registration-channel producer equals
// source-disconnected.
func (m *Mount) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session != nil
}

// ContentType returns the current source's content type. Empty and
// false when no source is attached.
func (m *Mount) ContentType() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return "", false
	}
	return m.session.contentType, true
}

// Meta returns the current source's metadata snapshot.
func (m *Mount) Meta() IceMeta {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return IceMeta{}
	}
	return m.session.meta
}

// Stats returns the current source's stats snapshot. When unconnected
// it returns the byte counters the last source left behind (zero for a
// mount that never had one) with SubCount 0. Never blocks.
func (m *Mount) Stats() Stats {
	m.mu.RLock()
	sess := m.session
	last := m.lastStats
	m.mu.RUnlock()
	if sess == nil {
		return last
	}
	return sess.stats.snapshot()
}

// SourceID returns the current source session's id, surfaced in the
// mount-info inventory's source_id field; the zero UUID and false when
// unconnected.
func (m *Mount) SourceID() (uuid.UUID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return uuid.UUID{}, false
	}
	return m.session.id, true
}

// SetSource atomically replaces the source-owned fields: a fresh
// registration channel, the new content-type and metadata, and a
// stats handle seeded with the previous session's last snapshot (or,
// when no source is attached, the counters kept by ClearSession; zero
// for a brand-new mount). The previous session's stats handle is
// closed, so a still-running previous source fails its next publish
// and terminates (§4.2).
func (m *Mount) SetSource(contentType string, meta IceMeta) *sourceSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := m.lastStats
	if m.session != nil {
		start = m.session.stats.snapshot()
		m.session.stats.close()
	}

	sess := &sourceSession{
		id:          uuid.New(),
		contentType: contentType,
		meta:        meta,
		subsSink:    make(chan *subEntry, subRegistrationBuffer),
		stats:       newStatsHandle(start),
	}
	m.session = sess
	return sess
}

// ClearSession drops the mount's current session if, and only if, it
// is still sess - preventing a stale source pump's cleanup from
// clobbering a session installed by a subsequent SetSource. The
// session's byte counters are kept so the next source continues them.
func (m *Mount) ClearSession(sess *sourceSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == sess {
		last := sess.stats.snapshot()
		last.SubCount = 0
		m.lastStats = last
		m.session = nil
	}
}

// RegisterSink registers a subscriber's delivery entry with the
// current source session, returning the content-type and metadata to
// respond with. ok is false when the mount has no source (or the
// registration channel is saturated, which only happens once the
// source has stopped draining it) - both map to MountNotConnected at
// the call site, matching §4.5.1 GET step 4.
func (m *Mount) RegisterSink(entry *subEntry) (contentType string, meta IceMeta, ok bool) {
	m.mu.RLock()
	sess := m.session
	m.mu.RUnlock()
	if sess == nil {
		return "", IceMeta{}, false
	}
	select {
	case sess.subsSink <- entry:
		return sess.contentType, sess.meta, true
	default:
		return "", IceMeta{}, false
	}
}
