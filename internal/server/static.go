package server

import (
	"io"
	"log"
	"mime"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/icerelay/icerelay/internal/httpio"
)

// DirStatic serves files out of a directory for the `/`, `/favicon.ico`
// and `/static/…` routes (§6's external static-file collaborator).
// It is deliberately minimal: GET only, no range requests, no
// directory listing - none of that is named by any SPEC_FULL
// component, so it stays out of scope rather than growing one.
type DirStatic struct {
	root   string
	logger *log.Logger
}

func NewDirStatic(root string, logger *log.Logger) *DirStatic {
	return &DirStatic{root: root, logger: logger}
}

func (s *DirStatic) Serve(conn net.Conn, req *httpio.Request) {
	if req.Method != "GET" {
		_ = httpio.WriteStatus(conn, 400)
		return
	}

	name := req.Path
	if name == "/" {
		name = "/index.html"
	}
	name = filepath.Clean(name)
	if strings.Contains(name, "..") {
		_ = httpio.WriteStatus(conn, 404)
		return
	}

	f, err := os.Open(filepath.Join(s.root, name))
	if err != nil {
		_ = httpio.WriteStatus(conn, 404)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		_ = httpio.WriteStatus(conn, 404)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := httpio.WriteStatus(conn, 200, httpio.Header{Name: "Content-Type", Value: contentType}); err != nil {
		return
	}
	if _, err := io.Copy(conn, f); err != nil && s.logger != nil {
		s.logger.Printf("static: write %s: %v", name, err)
	}
}
