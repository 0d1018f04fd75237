package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatErrorUnwrapAndMessage(t *testing.T) {
	cause := fmt.Errorf("boom")
	e := &FormatError{Kind: BadSignature, Field: "signature", Err: cause}

	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "bad signature")
	assert.Contains(t, e.Error(), "signature")
}

func TestFormatErrorWithoutCause(t *testing.T) {
	e := &FormatError{Kind: BadGeometry, Field: "bytes_per_sector"}
	assert.Contains(t, e.Error(), "bad geometry")
	assert.Nil(t, e.Unwrap())
}

func TestCredErrorMessage(t *testing.T) {
	e := &CredError{Kind: BadPassword, Err: fmt.Errorf("empty")}
	assert.Contains(t, e.Error(), "bad password")
	assert.ErrorIs(t, e, e.Err)
}

func TestUnlockErrorIsMatchesByKindOnly(t *testing.T) {
	e1 := &UnlockError{Kind: NoKey, Err: fmt.Errorf("reason one")}
	e2 := &UnlockError{Kind: NoKey, Err: fmt.Errorf("reason two")}
	e3 := &UnlockError{Kind: BadVmkLayout}

	assert.True(t, e1.Is(e2))
	assert.False(t, e1.Is(e3))
	assert.ErrorIs(t, e1, ErrNoKey)
}

func TestIoErrorIsMatchesByKindOnly(t *testing.T) {
	e1 := &IoError{Kind: Locked}
	e2 := &IoError{Kind: Locked, Err: fmt.Errorf("volume is locked")}
	e3 := &IoError{Kind: OutOfBounds}

	assert.True(t, e1.Is(e2))
	assert.False(t, e1.Is(e3))
	assert.ErrorIs(t, e2, ErrLocked)
}

func TestCryptoErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("mac mismatch")
	e := &CryptoError{Err: cause}
	assert.Contains(t, e.Error(), "mac mismatch")
	assert.Equal(t, cause, e.Unwrap())
}

func TestErrAbortedIsDistinctSentinel(t *testing.T) {
	assert.True(t, errors.Is(ErrAborted, ErrAborted))
	assert.False(t, errors.Is(ErrAborted, ErrNoKey))
}

func TestErrorKindStringers(t *testing.T) {
	assert.Equal(t, "mirror mismatch", MirrorMismatch.String())
	assert.Equal(t, "bad startup key file", BadStartupKeyFile.String())
	assert.Equal(t, "unsupported method", UnsupportedMethod.String())
	assert.Equal(t, "backend", Backend.String())
}
