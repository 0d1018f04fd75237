package bde

import "github.com/deploymenttheory/go-bde/internal/errs"

// The error taxonomy (spec.md §7) is defined once in internal/errs so that
// internal parsers/crypto/sectors packages can return it without importing
// this facade package; these aliases re-export it at the public API
// surface so callers only ever need to import "pkg/bde".

type (
	FormatError     = errs.FormatError
	FormatErrorKind = errs.FormatErrorKind
	CredError       = errs.CredError
	CredErrorKind   = errs.CredErrorKind
	UnlockError     = errs.UnlockError
	UnlockErrorKind = errs.UnlockErrorKind
	IoError         = errs.IoError
	IoErrorKind     = errs.IoErrorKind
	CryptoError     = errs.CryptoError
)

const (
	BadSignature    = errs.BadSignature
	BadGeometry     = errs.BadGeometry
	BadVersion      = errs.BadVersion
	MirrorMismatch  = errs.MirrorMismatch
	SizeOutOfBounds = errs.SizeOutOfBounds
	BadEntry        = errs.BadEntry
	Inconsistent    = errs.Inconsistent

	BadPassword         = errs.BadPassword
	BadRecoveryPassword = errs.BadRecoveryPassword
	BadStartupKeyFile   = errs.BadStartupKeyFile
	BadKeyLength        = errs.BadKeyLength

	NoKey             = errs.NoKey
	BadVmkLayout      = errs.BadVmkLayout
	BadFvekLayout     = errs.BadFvekLayout
	UnsupportedMethod = errs.UnsupportedMethod

	Locked      = errs.Locked
	OutOfBounds = errs.OutOfBounds
	Backend     = errs.Backend
)

var (
	ErrAborted = errs.ErrAborted
	ErrLocked  = errs.ErrLocked
	ErrNoKey   = errs.ErrNoKey
)
