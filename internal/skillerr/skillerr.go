// Package skillerr defines the error kinds shared by the registry client,
// lockfile store and install pipeline.
//
// Every failure that crosses a package boundary carries a Kind so callers can
// decide whether to retry (only KindRegistry is retryable) and which hint to
// show the operator, without string matching on messages.
package skillerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a package manager failure.
type Kind int

const (
	// KindUnknown is reported for errors that carry no classification.
	KindUnknown Kind = iota
	// KindRegistry covers transport, HTTP and decode failures talking to the registry.
	KindRegistry
	// KindNotFound means the slug or version does not exist.
	KindNotFound
	// KindGateDenied means the security gate rejected the package.
	KindGateDenied
	// KindFilesystem covers extraction and lockfile I/O failures.
	KindFilesystem
	// KindParse covers malformed lockfiles and malformed registry payloads.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindRegistry:
		return "registry"
	case KindNotFound:
		return "not found"
	case KindGateDenied:
		return "gate denied"
	case KindFilesystem:
		return "filesystem"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is a classified package manager error.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "download" or "read lockfile".
	Op string
	// Status is the HTTP status code for registry responses, zero otherwise.
	Status int
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is() and errors.As().
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error from a message.
func New(kind Kind, op, message string) error {
	return &Error{Kind: kind, Op: op, Err: errors.New(message)}
}

// Newf creates a classified error from a format string.
func Newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err. If err is nil, Wrap returns nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithStatus wraps err as a registry error carrying an HTTP status code.
func WithStatus(op string, status int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindRegistry, Op: op, Status: status, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusOf returns the HTTP status attached to err, or zero.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsHTTPNotFound reports whether err is a registry response with status 404.
func IsHTTPNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// Retryable reports whether an operation failing with err may succeed on retry.
func Retryable(err error) bool {
	return IsKind(err, KindRegistry)
}

// Hint returns a short operator-facing category hint for err.
func Hint(err error) string {
	switch KindOf(err) {
	case KindRegistry:
		return "the registry could not be reached or returned an unexpected response; check your network and registry URL"
	case KindNotFound:
		return "check the skill slug and version with 'clawhub skill search'"
	case KindGateDenied:
		return "the package was blocked by the security gate"
	case KindFilesystem:
		return "check permissions and free space for the skills directory and lockfile"
	case KindParse:
		return "the data is malformed; fix or remove the offending file"
	default:
		return ""
	}
}
