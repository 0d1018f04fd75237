// Package errs defines the typed error taxonomy shared by every internal
// BDE component (spec.md §7): FormatError, CredError, UnlockError,
// IoError, CryptoError, plus the ErrAborted cancellation marker. It lives
// below pkg/bde so that internal/parsers, internal/crypto and
// internal/sectors can return these errors without importing the
// top-level facade package, which in turn imports them.
package errs

import (
	"errors"
	"fmt"
)

// FormatErrorKind distinguishes the ways a BDE on-disk structure can fail
// to validate (spec.md §7).
type FormatErrorKind int

const (
	BadSignature FormatErrorKind = iota
	BadGeometry
	BadVersion
	MirrorMismatch
	SizeOutOfBounds
	BadEntry
	Inconsistent
)

func (k FormatErrorKind) String() string {
	switch k {
	case BadSignature:
		return "bad signature"
	case BadGeometry:
		return "bad geometry"
	case BadVersion:
		return "bad version"
	case MirrorMismatch:
		return "mirror mismatch"
	case SizeOutOfBounds:
		return "size out of bounds"
	case BadEntry:
		return "bad entry"
	case Inconsistent:
		return "inconsistent"
	default:
		return "unknown"
	}
}

// FormatError reports a structural violation of the on-disk layout. These
// are surfaced to the caller and never retried internally (spec.md §7).
type FormatError struct {
	Kind  FormatErrorKind
	Field string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bde: format error (%s) at %s: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("bde: format error (%s) at %s", e.Kind, e.Field)
}

func (e *FormatError) Unwrap() error { return e.Err }

// CredErrorKind distinguishes malformed-credential failures.
type CredErrorKind int

const (
	BadPassword CredErrorKind = iota
	BadRecoveryPassword
	BadStartupKeyFile
	BadKeyLength
)

func (k CredErrorKind) String() string {
	switch k {
	case BadPassword:
		return "bad password"
	case BadRecoveryPassword:
		return "bad recovery password"
	case BadStartupKeyFile:
		return "bad startup key file"
	case BadKeyLength:
		return "bad key length"
	default:
		return "unknown"
	}
}

// CredError reports malformed credential input from the caller, surfaced
// immediately from the relevant setter (spec.md §7).
type CredError struct {
	Kind CredErrorKind
	Err  error
}

func (e *CredError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bde: credential error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("bde: credential error (%s)", e.Kind)
}

func (e *CredError) Unwrap() error { return e.Err }

// UnlockErrorKind distinguishes why the unlock pipeline failed.
type UnlockErrorKind int

const (
	NoKey UnlockErrorKind = iota
	BadVmkLayout
	BadFvekLayout
	UnsupportedMethod
)

func (k UnlockErrorKind) String() string {
	switch k {
	case NoKey:
		return "no key"
	case BadVmkLayout:
		return "bad VMK layout"
	case BadFvekLayout:
		return "bad FVEK layout"
	case UnsupportedMethod:
		return "unsupported method"
	default:
		return "unknown"
	}
}

// UnlockError reports that unlocking did not succeed. NoKey is returned
// only after every protector on every metadata block has been tried;
// individual MAC failures are swallowed internally (spec.md §7).
type UnlockError struct {
	Kind UnlockErrorKind
	Err  error
}

func (e *UnlockError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bde: unlock error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("bde: unlock error (%s)", e.Kind)
}

func (e *UnlockError) Unwrap() error { return e.Err }

// Is reports whether target is an *UnlockError with the same Kind,
// letting callers write errors.Is(err, bde.ErrNoKey) without caring about
// the wrapped cause.
func (e *UnlockError) Is(target error) bool {
	t, ok := target.(*UnlockError)
	return ok && t.Kind == e.Kind
}

// IoErrorKind distinguishes backing-store failures from the two
// volume-facade conditions layered atop them.
type IoErrorKind int

const (
	Locked IoErrorKind = iota
	OutOfBounds
	Backend
)

func (k IoErrorKind) String() string {
	switch k {
	case Locked:
		return "locked"
	case OutOfBounds:
		return "out of bounds"
	case Backend:
		return "backend"
	default:
		return "unknown"
	}
}

// IoError reports a failure reading/seeking the backing store, or one of
// the two facade-level conditions (Locked, OutOfBounds) from spec.md §7.
type IoError struct {
	Kind IoErrorKind
	Err  error
}

func (e *IoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bde: io error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("bde: io error (%s)", e.Kind)
}

func (e *IoError) Unwrap() error { return e.Err }

// Is reports whether target is an *IoError with the same Kind.
func (e *IoError) Is(target error) bool {
	t, ok := target.(*IoError)
	return ok && t.Kind == e.Kind
}

// CryptoError reports a failure from the cryptographic primitives
// provider. It is always fatal to the current operation (spec.md §7).
type CryptoError struct {
	Err error
}

func (e *CryptoError) Error() string { return fmt.Sprintf("bde: crypto error: %v", e.Err) }
func (e *CryptoError) Unwrap() error { return e.Err }

// ErrAborted marks a cancellation signalled via Volume.SignalAbort. Read
// and ReadAt do not return it: an aborted read returns a short count with
// a nil error (spec.md §7).
var ErrAborted = errors.New("bde: read aborted")

// ErrLocked is returned by errors.Is-compatible checks against IoError{Kind: Locked}.
var ErrLocked = &IoError{Kind: Locked}

// ErrNoKey is returned by errors.Is-compatible checks against UnlockError{Kind: NoKey}.
var ErrNoKey = &UnlockError{Kind: NoKey}
