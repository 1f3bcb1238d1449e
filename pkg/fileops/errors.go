package fileops

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies a failure so callers can map it to their own error
// representation without parsing messages.
type Kind int

const (
	// KindIOError is an underlying read/write/stat failure not explained by
	// any other kind. It is also the kind reported for unknown errors.
	KindIOError Kind = iota
	// KindAccessDenied means the path, its real target, or its parent's real
	// target lies outside every allowed root.
	KindAccessDenied
	// KindNotFound means the path (or a parent that had to exist) is absent.
	KindNotFound
	// KindNotADirectory means a directory operation was invoked on a file.
	KindNotADirectory
	// KindAlreadyExists means a no-clobber target is present.
	KindAlreadyExists
	// KindEditMismatch means an edit's old text was not found.
	KindEditMismatch
)

func (k Kind) String() string {
	switch k {
	case KindAccessDenied:
		return "access denied"
	case KindNotFound:
		return "not found"
	case KindNotADirectory:
		return "not a directory"
	case KindAlreadyExists:
		return "already exists"
	case KindEditMismatch:
		return "edit mismatch"
	default:
		return "i/o error"
	}
}

// Sentinel errors for use with errors.Is.
var (
	ErrIO            = &Error{Kind: KindIOError}
	ErrAccessDenied  = &Error{Kind: KindAccessDenied}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrNotADirectory = &Error{Kind: KindNotADirectory}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}
	ErrEditMismatch  = &Error{Kind: KindEditMismatch}
)

// Error is the typed failure returned by every guarded operation.
type Error struct {
	Op   string // operation name, e.g. "read_file"
	Path string // offending path as requested
	Kind Kind
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match against the sentinel of the same kind, so
// errors.Is(err, ErrNotFound) works for any *Error carrying KindNotFound.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Path == "" && t.Err == nil && t.Kind == e.Kind
}

// NewError builds an *Error.
func NewError(op, path string, kind Kind, err error) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}

// Errorf builds an *Error whose cause is a formatted message.
func Errorf(op, path string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the Kind of err. Errors that are not an *Error are
// reported as KindIOError.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindIOError
}

// WithOp relabels err with the public operation that surfaced it, keeping its
// Kind. Errors that are not an *Error become KindIOError.
func WithOp(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		if fe.Op == op {
			return fe
		}
		cp := *fe
		cp.Op = op
		return &cp
	}
	return NewError(op, path, KindIOError, err)
}

// KindFromOS maps an error returned by the os package to a Kind.
func KindFromOS(err error) Kind {
	switch {
	case isNotExist(err):
		return KindNotFound
	case errors.Is(err, fs.ErrExist):
		return KindAlreadyExists
	default:
		return KindIOError
	}
}
