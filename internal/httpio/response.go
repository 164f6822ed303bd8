package httpio

import (
	"fmt"
	"io"
)

// reasonPhrases covers exactly the status codes the relay core emits
// (§4.3): 200, 400, 401, 404, 409, 500.
var reasonPhrases = map[int]string{
	200: "OK",
	400: "Bad Request",
	401: "Unauthorized",
	404: "Not found",
	409: "Conflict",
	500: "Internal server error",
}

// Header is one response header line.
type Header struct {
	Name  string
	Value string
}

// WriteStatus writes a bare `HTTP/1.1 <code> <reason>\r\n` + headers
// + blank-line response with no body, closing out requests that
// don't stream one (errors, admin updates, 200 OK before a pump).
func WriteStatus(w io.Writer, code int, headers ...Header) error {
	reason, ok := reasonPhrases[code]
	if !ok {
		reason = "Unknown"
	}
	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", code, reason); err != nil {
		return err
	}
	for _, h := range headers {
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", h.Name, h.Value); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}

// WriteBody writes a status-line response followed by a body, for
// the mount-info and playlist responses.
func WriteBody(w io.Writer, code int, body []byte, headers ...Header) error {
	if err := WriteStatus(w, code, headers...); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}
