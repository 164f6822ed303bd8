// Package server implements the connection dispatcher (C6): the
// per-connection goroutine that parses one request off a freshly
// accepted socket and routes it to the mount-info serializer, the
// admin metadata update, the static-file collaborator, or the relay
// Connector.
package server

import (
	"bufio"
	"log"
	"net"
	"strconv"
	"strings"

	"github.com/icerelay/icerelay/internal/config"
	"github.com/icerelay/icerelay/internal/httpio"
	"github.com/icerelay/icerelay/internal/relay"
)

// StaticFiles is the external collaborator for `/static/…`, `/` and
// `/favicon.ico` (§4.4, §6). It is outside the relay core's scope; the
// dispatcher only needs something that can answer a GET for a path.
type StaticFiles interface {
	Serve(conn net.Conn, req *httpio.Request)
}

// NoStatic is a StaticFiles that always answers 404, for deployments
// with no static_source_dir configured.
type NoStatic struct{}

func (NoStatic) Serve(conn net.Conn, req *httpio.Request) {
	_ = httpio.WriteStatus(conn, 404)
}

// Dispatcher is C6: it owns the collaborators a connection needs and
// has no per-connection state of its own, so one Dispatcher is shared
// across every accepted connection.
type Dispatcher struct {
	connector *relay.Connector
	registry  *relay.Registry
	auth      relay.AuthPolicy
	cfg       *config.Config
	static    StaticFiles
	logger    *log.Logger
}

func NewDispatcher(connector *relay.Connector, registry *relay.Registry, auth relay.AuthPolicy, cfg *config.Config, static StaticFiles, logger *log.Logger) *Dispatcher {
	if static == nil {
		static = NoStatic{}
	}
	return &Dispatcher{connector: connector, registry: registry, auth: auth, cfg: cfg, static: static, logger: logger}
}

// Handle parses and routes exactly one request on conn, then drives
// whatever pump the route selects to completion, and returns. The
// caller is expected to close conn afterward.
func (d *Dispatcher) Handle(conn net.Conn) {
	reader := bufio.NewReaderSize(conn, httpio.MaxInitialRead)
	req, err := httpio.ParseRequest(reader)
	if err != nil {
		d.logger.Printf("dropping connection from %s: %v", conn.RemoteAddr(), err)
		return
	}

	switch {
	case req.Path == "/mount_info":
		d.handleMountInfo(conn, req)
	case strings.HasPrefix(req.Path, "/admin/metadata"):
		d.handleAdminMetadata(conn, req)
	case strings.HasPrefix(req.Path, "/admin/"):
		_ = httpio.WriteStatus(conn, 400)
	case strings.HasSuffix(req.Path, ".m3u"):
		d.handlePlaylist(conn, req)
	case req.Path == "/" || req.Path == "/favicon.ico" || strings.HasPrefix(req.Path, "/static/"):
		d.static.Serve(conn, req)
	default:
		d.handleAttach(conn, req)
	}
}

func (d *Dispatcher) handleMountInfo(conn net.Conn, req *httpio.Request) {
	if req.Method != "GET" {
		_ = httpio.WriteStatus(conn, 400)
		return
	}
	ctx := d.mountInfoContext(conn, req)
	body, err := relay.BuildInventory(d.registry.Mounts(), d.cfg.DefaultStreamURL, ctx)
	if err != nil {
		_ = httpio.WriteStatus(conn, 500)
		return
	}
	_ = httpio.WriteBody(conn, 200, body,
		httpio.Header{Name: "Content-Type", Value: "application/json"},
		httpio.Header{Name: "Content-Length", Value: strconv.Itoa(len(body))},
	)
}

// handlePlaylist implements the §12 .m3u supplement: a GET whose path
// ends in .m3u gets a playlist body for the mount named by stripping
// the suffix, instead of a subscriber attach.
func (d *Dispatcher) handlePlaylist(conn net.Conn, req *httpio.Request) {
	if req.Method != "GET" {
		_ = httpio.WriteStatus(conn, 400)
		return
	}
	mountPath := strings.TrimSuffix(req.Path, ".m3u")
	mount, found := d.registry.FindMount(mountPath)
	if !found {
		_ = httpio.WriteStatus(conn, 404)
		return
	}
	ctx := d.mountInfoContext(conn, req)
	streamURL := relay.ResolveStreamURL(mount.StreamURLPolicy(), d.cfg.DefaultStreamURL, mountPath, ctx)
	body := relay.PlaylistBody(streamURL)
	_ = httpio.WriteBody(conn, 200, []byte(body), httpio.Header{Name: "Content-Type", Value: "audio/x-mpegurl"})
}

func (d *Dispatcher) mountInfoContext(conn net.Conn, req *httpio.Request) relay.MountInfoContext {
	return relay.MountInfoContext{
		Host:           req.Headers.Get("Host"),
		XForwardedHost: req.Headers.Get("X-Forwarded-Host"),
		LocalAddr:      conn.LocalAddr().String(),
	}
}

// handleAdminMetadata implements §4.6's eight-step algorithm.
func (d *Dispatcher) handleAdminMetadata(conn net.Conn, req *httpio.Request) {
	authorization := req.Authorization()
	if authorization == nil {
		_ = httpio.WriteStatus(conn, 401)
		return
	}

	query := req.Query
	mountPath := query.Get("mount")
	if mountPath == "" {
		_ = httpio.WriteStatus(conn, 400)
		return
	}

	mount, found := d.registry.FindMount(mountPath)
	if !found {
		_ = httpio.WriteStatus(conn, 404)
		return
	}

	if !d.auth.IsAuthorizedSource(*authorization, mount) {
		_ = httpio.WriteStatus(conn, 401)
		return
	}

	if query.Get("mode") != "updinfo" {
		_ = httpio.WriteStatus(conn, 400)
		return
	}

	song := query.Get("song")
	if song == "" {
		_ = httpio.WriteStatus(conn, 400)
		return
	}

	mount.SetSong(song)
	_ = httpio.WriteStatus(conn, 200)
}

// handleAttach hands anything not matched above to the Connector
// (§4.5): SOURCE attaches and runs the source pump, GET attaches and
// runs the sink pump, anything else is UnknownMethod.
func (d *Dispatcher) handleAttach(conn net.Conn, req *httpio.Request) {
	contentType := req.ContentType()
	authorization := req.Authorization()

	switch req.Method {
	case "SOURCE":
		meta := relay.ParseIceMeta(req.Headers)
		source, attachErr := d.connector.AttachSource(conn, req.Path, contentType, authorization, meta)
		if attachErr != nil {
			_ = httpio.WriteStatus(conn, attachErr.Kind.Status())
			return
		}
		if err := httpio.WriteStatus(conn, 200); err != nil {
			return
		}
		source.Run()

	case "GET":
		sink, attachErr := d.connector.AttachSink(conn, req.Path, authorization)
		if attachErr != nil {
			_ = httpio.WriteStatus(conn, attachErr.Kind.Status())
			return
		}
		var headers []httpio.Header
		for _, h := range sink.Meta.AsHeaders() {
			headers = append(headers, httpio.Header{Name: h.Name, Value: h.Value})
		}
		headers = append(headers, httpio.Header{Name: "Content-Type", Value: sink.ContentType})
		if err := httpio.WriteStatus(conn, 200, headers...); err != nil {
			return
		}
		sink.Run()

	default:
		_ = httpio.WriteStatus(conn, relay.UnknownMethod.Status())
	}
}
