package httpio

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteStatusKnownCode(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStatus(&buf, 404); err != nil {
		t.Fatalf("WriteStatus error: %v", err)
	}
	if got := buf.String(); !strings.HasPrefix(got, "HTTP/1.1 404 Not found\r\n") {
		t.Fatalf("unexpected status line: %q", got)
	}
}

func TestWriteStatusWithHeaders(t *testing.T) {
	var buf bytes.Buffer
	WriteStatus(&buf, 200, Header{Name: "Content-Type", Value: "audio/mpeg"})
	got := buf.String()
	if !strings.Contains(got, "Content-Type: audio/mpeg\r\n") {
		t.Fatalf("missing header in response: %q", got)
	}
	if !strings.HasSuffix(got, "\r\n\r\n") {
		t.Fatalf("response should end with a blank line: %q", got)
	}
}

func TestWriteBodyIncludesBody(t *testing.T) {
	var buf bytes.Buffer
	WriteBody(&buf, 200, []byte(`[]`), Header{Name: "Content-Type", Value: "application/json"})
	got := buf.String()
	if !strings.HasSuffix(got, "\r\n\r\n[]") {
		t.Fatalf("unexpected response: %q", got)
	}
}
