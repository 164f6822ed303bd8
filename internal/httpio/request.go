// Package httpio implements the minimal HTTP/1.1 request parsing and
// response writing the relay core needs (C5): just enough to read one
// request line and header block off a freshly accepted socket, and to
// write a status-line response. It intentionally does not use
// net/http - the protocol here is plaintext, single-request-per-
// connection, and needs direct access to the raw socket for the
// source/sink byte pumps that follow attach (see DESIGN.md).
package httpio

import (
	"bufio"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxInitialRead is the buffered reader's initial size (§4.3). It is
// not a cap: readLine uses ReadString, which grows past it, so neither
// the length of a line nor the number of header lines is limited.
const MaxInitialRead = 2048

// ErrMalformedRequest is returned when the request line or headers
// cannot be parsed from the first read. Per §4.3/§7, the caller closes
// the connection silently; no response is written.
var ErrMalformedRequest = errors.New("httpio: malformed request")

// Request is the parsed first request on a connection.
type Request struct {
	Method  string
	URI     string
	Path    string
	Query   url.Values
	Headers http.Header
}

// ParseRequest reads and parses the request line and header block
// from r. It does not read the body; callers that need to stream a
// source body read directly from the underlying connection afterward.
func ParseRequest(r *bufio.Reader) (*Request, error) {
	line, err := readLine(r)
	if err != nil || line == "" {
		return nil, ErrMalformedRequest
	}

	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return nil, ErrMalformedRequest
	}
	method, uri := parts[0], parts[1]
	if method == "" || uri == "" {
		return nil, ErrMalformedRequest
	}

	headers := make(http.Header)
	for {
		hline, err := readLine(r)
		if err != nil {
			return nil, ErrMalformedRequest
		}
		if hline == "" {
			break
		}
		name, value, ok := strings.Cut(hline, ":")
		if !ok {
			return nil, ErrMalformedRequest
		}
		headers.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	parsed, err := url.ParseRequestURI(uri)
	if err != nil {
		return nil, ErrMalformedRequest
	}

	return &Request{
		Method:  method,
		URI:     uri,
		Path:    parsed.Path,
		Query:   parsed.Query(),
		Headers: headers,
	}, nil
}

// readLine reads one CRLF- or LF-terminated line, stripping the
// terminator. An io error (including EOF before any terminator)
// propagates to the caller as a parse failure.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ContentType returns the Content-Type header as an optional string:
// nil when absent or empty (§4.4's "treated as absent" rule extended
// uniformly to this field).
func (req *Request) ContentType() *string {
	return optionalHeader(req.Headers, "Content-Type")
}

// Authorization returns the Authorization header the same way.
func (req *Request) Authorization() *string {
	return optionalHeader(req.Headers, "Authorization")
}

// optionalHeader treats an absent, empty, or non-UTF-8 header value
// as absent (§4.4).
func optionalHeader(h http.Header, name string) *string {
	v := h.Get(name)
	if v == "" || !utf8.ValidString(v) {
		return nil
	}
	return &v
}
