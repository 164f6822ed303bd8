package relay

import (
	"net/http"
	"strconv"
)

// IceMeta is the fixed set of optional stream metadata fields a source
// may advertise on attach and that are relayed to subscribers and the
// mount-info inventory. Field order below is the documented order used
// by AsHeaders.
type IceMeta struct {
	Public      *int
	Name        *string
	Description *string
	Genre       *string
	URL         *string
	IRC         *string
	AIM         *string
	ICQ         *string
	AudioInfo   *string
}

// iceMetaField describes one IceMeta field: its request-header suffix
// (after "ice-"), the JSON key suffix (after "ice_"), and the header
// name it is rendered under for subscribers (after "icy-", except
// AudioInfo which keeps the "ice-" prefix entirely - see SPEC_FULL §9(iii)).
type iceMetaField struct {
	requestSuffix string
	jsonSuffix    string
	icyName       string
}

var iceMetaFields = []iceMetaField{
	{"public", "public", "pub"},
	{"name", "name", "name"},
	{"description", "description", "description"},
	{"genre", "genre", "genre"},
	{"url", "url", "url"},
	{"irc", "irc", "irc"},
	{"aim", "aim", "aim"},
	{"icq", "icq", "icq"},
	{"audio-info", "audio_info", "audio-info"},
}

// ParseIceMeta reads ice-* request headers into an IceMeta value.
// An empty header value is treated as absent. ice-public that fails
// to parse as an integer is treated as absent rather than rejecting
// the whole request.
func ParseIceMeta(h http.Header) IceMeta {
	var m IceMeta
	get := func(suffix string) (string, bool) {
		v := h.Get("ice-" + suffix)
		if v == "" {
			return "", false
		}
		return v, true
	}
	if v, ok := get("public"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			m.Public = &n
		}
	}
	if v, ok := get("name"); ok {
		m.Name = &v
	}
	if v, ok := get("description"); ok {
		m.Description = &v
	}
	if v, ok := get("genre"); ok {
		m.Genre = &v
	}
	if v, ok := get("url"); ok {
		m.URL = &v
	}
	if v, ok := get("irc"); ok {
		m.IRC = &v
	}
	if v, ok := get("aim"); ok {
		m.AIM = &v
	}
	if v, ok := get("icq"); ok {
		m.ICQ = &v
	}
	if v, ok := get("audio-info"); ok {
		m.AudioInfo = &v
	}
	return m
}

// headerPair is one (name, value) entry in documented field order.
type headerPair struct {
	Name  string
	Value string
}

// AsHeaders renders the present fields as the subscriber-facing
// header set, in documented order. Every field is emitted with an
// "icy-" prefix except AudioInfo, which keeps the "ice-" prefix -
// a known asymmetry preserved from the upstream wire format, not a bug.
func (m IceMeta) AsHeaders() []headerPair {
	var out []headerPair
	for _, f := range iceMetaFields {
		var val string
		var present bool
		switch f.requestSuffix {
		case "public":
			if m.Public != nil {
				val, present = strconv.Itoa(*m.Public), true
			}
		case "name":
			present = m.Name != nil
			if present {
				val = *m.Name
			}
		case "description":
			present = m.Description != nil
			if present {
				val = *m.Description
			}
		case "genre":
			present = m.Genre != nil
			if present {
				val = *m.Genre
			}
		case "url":
			present = m.URL != nil
			if present {
				val = *m.URL
			}
		case "irc":
			present = m.IRC != nil
			if present {
				val = *m.IRC
			}
		case "aim":
			present = m.AIM != nil
			if present {
				val = *m.AIM
			}
		case "icq":
			present = m.ICQ != nil
			if present {
				val = *m.ICQ
			}
		case "audio-info":
			present = m.AudioInfo != nil
			if present {
				val = *m.AudioInfo
			}
		}
		if !present {
			continue
		}
		prefix := "icy-"
		if f.requestSuffix == "audio-info" {
			prefix = "ice-"
		}
		out = append(out, headerPair{Name: prefix + f.icyName, Value: val})
	}
	return out
}

// JSONFields returns the present fields as ice_<name>: value pairs for
// the mount-info serializer (C10). The result is a map, so it carries
// no field order; encoding/json writes its keys sorted.
func (m IceMeta) JSONFields() map[string]any {
	out := make(map[string]any)
	if m.Public != nil {
		out["ice_public"] = *m.Public
	}
	if m.Name != nil {
		out["ice_name"] = *m.Name
	}
	if m.Description != nil {
		out["ice_description"] = *m.Description
	}
	if m.Genre != nil {
		out["ice_genre"] = *m.Genre
	}
	if m.URL != nil {
		out["ice_url"] = *m.URL
	}
	if m.IRC != nil {
		out["ice_irc"] = *m.IRC
	}
	if m.AIM != nil {
		out["ice_aim"] = *m.AIM
	}
	if m.ICQ != nil {
		out["ice_icq"] = *m.ICQ
	}
	if m.AudioInfo != nil {
		out["ice_audio_info"] = *m.AudioInfo
	}
	return out
}
