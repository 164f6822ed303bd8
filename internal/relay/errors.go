package relay

import "fmt"

// AttachErrorKind is the error taxonomy raised by
// Connector.AttachSource and Connector.AttachSink (§4.5.1) and mapped to an HTTP status by the dispatcher (§7).
type AttachErrorKind int

const (
	UnknownMethod AttachErrorKind = iota
	MountHasSource
	MountDoesNotExist
	MountNotConnected
	SourceMissingContentType
	Unauthorized
)

// Status is this kind's HTTP status per the §7 mapping table.
func (k AttachErrorKind) Status() int {
	switch k {
	case UnknownMethod, SourceMissingContentType:
		return 400
	case MountHasSource:
		return 409
	case MountDoesNotExist, MountNotConnected:
		return 404
	case Unauthorized:
		return 401
	default:
		return 500
	}
}

func (k AttachErrorKind) String() string {
	switch k {
	case UnknownMethod:
		return "unknown method"
	case MountHasSource:
		return "mount has source"
	case MountDoesNotExist:
		return "mount does not exist"
	case MountNotConnected:
		return "mount not connected"
	case SourceMissingContentType:
		return "source missing content type"
	case Unauthorized:
		return "unauthorized"
	default:
		return "unknown error"
	}
}

// AttachError is the error type AttachSource and AttachSink return; the
// dispatcher type-switches on Kind to pick a status rather than
// re-deriving it from a string (SPEC_FULL §10).
type AttachError struct {
	Kind AttachErrorKind
	Path string
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("attach %s: %s", e.Path, e.Kind)
}

func newAttachError(kind AttachErrorKind, path string) *AttachError {
	return &AttachError{Kind: kind, Path: path}
}
