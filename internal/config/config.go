// Package config loads the relay's external configuration. File
// format and CLI parsing sit outside the relay core's scope
// (SPEC_FULL §1), but the shape of the Config collaborator the core
// consumes (§6.2) is concrete here, loaded from the teacher's VIBE
// format via pkg/vibe rather than introducing a new format.
package config

import (
	"fmt"
	"strings"

	"github.com/icerelay/icerelay/internal/relay"
	"github.com/icerelay/icerelay/pkg/vibe"
)

// MountConfig is one pre-registered mount (§6.2, §12 startup
// registration).
type MountConfig struct {
	SourceAuth *string
	SubAuth    *string
	StreamURL  *relay.StreamURL
	Permanent  bool
}

// Config is the process-wide configuration consumed by the relay
// core (§6.2).
type Config struct {
	ListenAddress              string
	AdminAuthorization         *string
	AllowUnauthenticatedMounts bool
	DefaultStreamURL           *relay.StreamURL
	Mounts                     map[string]MountConfig
	StaticSourceDir            *string
}

// DefaultConfig matches §6.3's listen endpoint and otherwise leaves
// every optional collaborator unset, following the teacher's
// DefaultConfig convention of always returning a fully-populated value
// rather than a bare struct literal at call sites.
func DefaultConfig() *Config {
	return &Config{
		ListenAddress: "127.0.0.1:8080",
		Mounts:        make(map[string]MountConfig),
	}
}

// Load parses a VIBE configuration file into a Config, falling back
// to DefaultConfig for anything the file omits.
func Load(filename string) (*Config, error) {
	root, err := vibe.ParseFile(filename)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", filename, err)
	}

	cfg := DefaultConfig()

	if listen := root.GetStringDefault("listen", ""); listen != "" {
		cfg.ListenAddress = listen
	}
	if admin := root.GetStringDefault("admin_authorization", ""); admin != "" {
		cfg.AdminAuthorization = &admin
	}
	cfg.AllowUnauthenticatedMounts = root.GetBoolDefault("allow_unauthenticated_mounts", false)
	if dir := root.GetStringDefault("static_source_dir", ""); dir != "" {
		cfg.StaticSourceDir = &dir
	}
	cfg.DefaultStreamURL = parseStreamURL(root.GetPath("default_stream_url"))

	mounts, err := root.RequireObject("mounts")
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", filename, err)
	}
	for _, key := range mountKeys(mounts) {
		mountVal, err := root.RequireObject("mounts." + key)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", filename, err)
		}
		if mountVal == nil {
			continue
		}
		name := key
		if !strings.HasPrefix(name, "/") {
			name = "/" + name
		}

		mc := MountConfig{
			Permanent: mounts.Get(key).GetBoolDefault("permanent", false),
		}
		if sa := mounts.Get(key).GetStringDefault("source_auth", ""); sa != "" {
			mc.SourceAuth = &sa
		}
		if sub := mounts.Get(key).GetStringDefault("sub_auth", ""); sub != "" {
			mc.SubAuth = &sub
		}
		mc.StreamURL = parseStreamURL(mounts.Get(key).GetPath("stream_url"))

		cfg.Mounts[name] = mc
	}

	return cfg, nil
}

// mountKeys returns obj's keys in order, or nil if the config omitted
// the mounts block entirely.
func mountKeys(obj *vibe.Object) []string {
	if obj == nil {
		return nil
	}
	return obj.Keys
}

// parseStreamURL reads a StreamUrl tagged variant: either the bare
// strings "hostname" / "x_forwarded_host_name", or an object
// `{ static: "..." }` (§6.2). Returns nil when val is absent or
// doesn't match either shape.
func parseStreamURL(val *vibe.Value) *relay.StreamURL {
	if val == nil {
		return nil
	}
	switch val.Type {
	case vibe.TypeString:
		switch val.String {
		case "hostname":
			return &relay.StreamURL{Kind: relay.StreamURLHostname}
		case "x_forwarded_host_name":
			return &relay.StreamURL{Kind: relay.StreamURLXForwardedHostName}
		}
	case vibe.TypeObject:
		if static := val.GetStringDefault("static", ""); static != "" {
			return &relay.StreamURL{Kind: relay.StreamURLStatic, Static: static}
		}
	}
	return nil
}
