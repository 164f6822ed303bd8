package relay

import (
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// sourceReadBufferSize is the reusable read buffer size for the
// reader/broadcaster sub-task (§4.5.3).
const sourceReadBufferSize = 16384

// sinkChannelBuffer is the per-sink delivery channel's buffer. The
// spec models this channel as unbounded (§5); a bounded buffer is a
// deliberate, documented finite approximation (SPEC_FULL known
// ambiguity (i)): a full buffer causes that read's clone to be
// silently skipped for that one subscriber rather than grown further,
// instead of the unconstrained memory growth the spec's unbounded
// model would otherwise incur.
const sinkChannelBuffer = 256

// subSweepInterval is the minimum spacing between dead-subscriber
// sweeps (§4.5.3).
const subSweepInterval = 10 * time.Second

// SourceHandle is returned by AttachSource when the connection is a
// SOURCE. Run drives the pump; the caller is responsible for writing
// the initial 200 OK before calling Run.
type SourceHandle struct {
	mount   *Mount
	session *sourceSession
	conn    net.Conn
	logger  *log.Logger
}

// SinkHandle is returned by AttachSink when the connection is a GET.
// Run drives the pump.
type SinkHandle struct {
	mount       *Mount
	entry       *subEntry
	ListenerID  uuid.UUID
	ContentType string
	Meta        IceMeta
	conn        net.Conn
	logger      *log.Logger
}

// Connector implements the relay state machine (C7): attach, then
// pump bytes from one source to N sinks until either side
// disconnects.
type Connector struct {
	registry                   *Registry
	auth                       AuthPolicy
	allowUnauthenticatedMounts bool
	logger                     *log.Logger
}

func NewConnector(registry *Registry, auth AuthPolicy, allowUnauthenticatedMounts bool, logger *log.Logger) *Connector {
	return &Connector{registry: registry, auth: auth, allowUnauthenticatedMounts: allowUnauthenticatedMounts, logger: logger}
}

// AttachSource implements §4.5.1's SOURCE branch.
func (c *Connector) AttachSource(conn net.Conn, path string, contentType *string, authorization *string, meta IceMeta) (*SourceHandle, *AttachError) {
	if contentType == nil || *contentType == "" {
		return nil, newAttachError(SourceMissingContentType, path)
	}

	auth := ""
	if authorization != nil {
		auth = *authorization
	}

	mount, found := c.registry.FindMount(path)
	if found {
		if !c.auth.IsAuthorizedSource(auth, mount) {
			return nil, newAttachError(Unauthorized, path)
		}
		if mount.IsConnected() {
			return nil, newAttachError(MountHasSource, path)
		}
		session := mount.SetSource(*contentType, meta)
		c.logger.Printf("source %s attached to %s", session.id, path)
		return &SourceHandle{mount: mount, session: session, conn: conn, logger: c.logger}, nil
	}

	isAdmin := c.auth.IsAdmin(auth)
	if !isAdmin && !c.allowUnauthenticatedMounts {
		return nil, newAttachError(Unauthorized, path)
	}

	var sourceAuth *string
	if authorization != nil {
		sourceAuth = authorization
	}
	mount = NewMount(path, false, sourceAuth, nil, nil)
	if !c.registry.AddMount(path, mount) {
		// Lost a race against a concurrent SOURCE/startup registration
		// for the same path; re-resolve against the winner.
		mount, _ = c.registry.FindMount(path)
		if !c.auth.IsAuthorizedSource(auth, mount) {
			return nil, newAttachError(Unauthorized, path)
		}
		if mount.IsConnected() {
			return nil, newAttachError(MountHasSource, path)
		}
	}
	session := mount.SetSource(*contentType, meta)
	c.logger.Printf("source %s attached to %s", session.id, path)
	return &SourceHandle{mount: mount, session: session, conn: conn, logger: c.logger}, nil
}

// AttachSink implements §4.5.1's GET branch.
func (c *Connector) AttachSink(conn net.Conn, path string, authorization *string) (*SinkHandle, *AttachError) {
	mount, found := c.registry.FindMount(path)
	if !found {
		return nil, newAttachError(MountDoesNotExist, path)
	}

	auth := ""
	if authorization != nil {
		auth = *authorization
	}
	if !c.auth.IsAuthorizedSub(auth, mount) {
		return nil, newAttachError(Unauthorized, path)
	}
	if !mount.IsConnected() {
		return nil, newAttachError(MountNotConnected, path)
	}

	entry := newSubEntry(sinkChannelBuffer)
	contentType, meta, ok := mount.RegisterSink(entry)
	if !ok {
		return nil, newAttachError(MountNotConnected, path)
	}

	c.logger.Printf("listener %s attached to %s", entry.id, path)
	return &SinkHandle{mount: mount, entry: entry, ListenerID: entry.id, ContentType: contentType, Meta: meta, conn: conn, logger: c.logger}, nil
}

// Run drains the per-sink channel, writing each block to the socket,
// until the socket write fails or the channel is closed by the
// source's cleanup (§4.5.2).
func (s *SinkHandle) Run() {
	defer s.entry.markDone()
	defer s.logger.Printf("listener %s detached from %s", s.ListenerID, s.mount.Path())
	for block := range s.entry.ch {
		if _, err := s.conn.Write(block); err != nil {
			return
		}
	}
}

// Run races the sub-registration consumer against the
// reader/broadcaster (§4.5.3) and clears the mount's session on exit
// regardless of which sub-task finished first.
func (s *SourceHandle) Run() {
	defer s.mount.ClearSession(s.session)
	defer s.logger.Printf("source %s detached from %s", s.session.id, s.mount.Path())

	var subsMu sync.RWMutex
	subs := make([]*subEntry, 0, 8)
	readerDone := make(chan struct{})
	registerDone := make(chan struct{})

	go func() {
		defer close(registerDone)
		for {
			select {
			case entry, ok := <-s.session.subsSink:
				if !ok {
					return
				}
				subsMu.Lock()
				subs = append(subs, entry)
				subsMu.Unlock()
			case <-readerDone:
				return
			}
		}
	}()

	buf := make([]byte, sourceReadBufferSize)
	lastSweep := time.Now()

	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			stats := s.session.stats.snapshot()
			stats.BytesIn += int64(n)

			subsMu.RLock()
			subsToRemove := false
			stats.SubCount = len(subs)
			for _, entry := range subs {
				if entry.isClosed() {
					entry.closeChannel()
					subsToRemove = true
					stats.SubCount--
					continue
				}
				clone := make([]byte, n)
				copy(clone, buf[:n])
				select {
				case entry.ch <- clone:
					stats.BytesOut += int64(n)
				default:
					// Sink is lagging; drop this block for it rather
					// than block the broadcaster (SPEC_FULL known
					// ambiguity (i)).
				}
			}
			subsMu.RUnlock()

			if subsToRemove && time.Since(lastSweep) >= subSweepInterval {
				subsMu.Lock()
				live := subs[:0]
				for _, entry := range subs {
					if !entry.isClosed() {
						live = append(live, entry)
					}
				}
				subs = live
				subsMu.Unlock()
				lastSweep = time.Now()
			}

			if !s.session.stats.publish(stats) {
				break
			}
		}
		if err != nil {
			if err != io.EOF {
				s.logger.Printf("source %s: read error: %v", s.mount.Path(), err)
			}
			break
		}
		if n == 0 {
			break
		}
	}

	close(readerDone)
	<-registerDone

	subsMu.RLock()
	final := append([]*subEntry(nil), subs...)
	subsMu.RUnlock()
	for _, entry := range final {
		entry.closeChannel()
	}
}
