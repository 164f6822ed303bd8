package relay

import (
	"encoding/json"
	"strings"
)

// MountInfoContext carries the request-derived data needed to resolve
// a Hostname/XForwardedHostName stream URL policy (§4.9): the
// /mount_info request's own Host and X-Forwarded-Host headers, and
// the listener's local address formatted as a fallback.
type MountInfoContext struct {
	Host           string
	XForwardedHost string
	LocalAddr      string
}

// ResolveStreamURL derives a mount's user-visible URL: the mount's
// own policy, falling back to the process default, falling back to
// Hostname (§4.9).
func ResolveStreamURL(policy, fallback *StreamURL, path string, ctx MountInfoContext) string {
	p := policy
	if p == nil {
		p = fallback
	}
	if p == nil {
		return hostnameURL(ctx) + path
	}
	switch p.Kind {
	case StreamURLStatic:
		return p.Static
	case StreamURLXForwardedHostName:
		if ctx.XForwardedHost != "" {
			return ctx.XForwardedHost + path
		}
		return hostnameURL(ctx) + path
	default:
		return hostnameURL(ctx) + path
	}
}

func hostnameURL(ctx MountInfoContext) string {
	if ctx.Host != "" {
		return ctx.Host
	}
	return ctx.LocalAddr
}

// BuildInventory renders the mount-info JSON array (C10). Mounts are
// rendered in the order given by the caller (the registry's iteration
// order, which the spec leaves unspecified).
func BuildInventory(mounts []*Mount, defaultStreamURL *StreamURL, ctx MountInfoContext) ([]byte, error) {
	records := make([]map[string]any, 0, len(mounts))
	for _, m := range mounts {
		stats := m.Stats()
		record := map[string]any{
			"name":                 m.Path(),
			"subscribers":          stats.SubCount,
			"stream_url":           ResolveStreamURL(m.StreamURLPolicy(), defaultStreamURL, m.Path(), ctx),
			"bytes_in":             stats.BytesIn,
			"bytes_out":            stats.BytesOut,
			"on_air":               m.IsConnected(),
			"requires_source_auth": m.SourceAuth() != nil,
			"requires_sub_auth":    m.SubAuth() != nil,
		}
		if song := m.Song(); song != nil {
			record["song"] = *song
		}
		if id, ok := m.SourceID(); ok {
			record["source_id"] = id.String()
		}
		for k, v := range m.Meta().JSONFields() {
			record[k] = v
		}
		records = append(records, record)
	}
	return json.Marshal(records)
}

// PlaylistBody renders a minimal .m3u playlist body for path's mount,
// supplementing the distilled spec with the original implementation's
// behavior (SPEC_FULL §12).
func PlaylistBody(streamURL string) string {
	var sb strings.Builder
	sb.WriteString("#EXTM3U\n")
	sb.WriteString(streamURL)
	sb.WriteString("\n")
	return sb.String()
}
