package bde

import (
	"fmt"

	"github.com/deploymenttheory/go-bde/internal/crypto"
	"github.com/deploymenttheory/go-bde/internal/device"
	"github.com/deploymenttheory/go-bde/internal/errs"
	"github.com/deploymenttheory/go-bde/internal/types"
)

// credentials is the mutable bag of unlocking inputs a caller supplies
// through Volume's setter methods before calling Unlock (spec.md §3's
// Credentials, §4.6's protector priority). Every field is zeroed by wipe,
// called from Volume.Close and from every Unlock exit path, so a password
// or derived key never outlives the operation that needed it.
type credentials struct {
	passwordHash [32]byte
	hasPassword  bool

	recoveryHash    [32]byte
	hasRecoveryPass bool

	fvek  []byte
	tweak []byte
	hasDirectKeys bool

	startupKey *types.ExternalKey

	stretchIterations uint32
}

// setPassword hashes password (spec.md §4.5: SHA-256(SHA-256(UTF-16LE(password))))
// and stores only the digest. An empty password is not an error (spec.md
// §4.5): it simply leaves hasPassword false, so Unlock's protector list
// skips the password class entirely rather than trying an empty-string
// derivation.
func (c *credentials) setPassword(password string) error {
	if password == "" {
		return nil
	}
	c.passwordHash = crypto.HashPassword(password)
	c.hasPassword = true
	return nil
}

// setRecoveryPassword validates and decodes s (spec.md §4.5's 48-digit
// format: eight dash-separated groups of six digits) and stores only its
// hash. The multiple-of-11 property of each group is not checked.
func (c *credentials) setRecoveryPassword(s string) error {
	decoded, err := crypto.ParseRecoveryPassword(s)
	if err != nil {
		return err
	}
	c.recoveryHash = crypto.HashRecoveryPassword(decoded)
	c.hasRecoveryPass = true
	return nil
}

// setKeys installs an explicit FVEK (and, for diffuser/XTS methods, tweak
// key) supplied directly by the caller, bypassing VMK unwrap entirely
// (spec.md §4.6's "direct mode"). Validated against the volume's declared
// encryption method at Unlock time, since credentials setters run before a
// volume is necessarily parsed.
func (c *credentials) setKeys(fvek, tweak []byte) error {
	if len(fvek) == 0 {
		return &errs.CredError{Kind: errs.BadKeyLength, Err: fmt.Errorf("fvek must not be empty")}
	}
	c.fvek = append([]byte(nil), fvek...)
	if len(tweak) > 0 {
		c.tweak = append([]byte(nil), tweak...)
	} else {
		c.tweak = nil
	}
	c.hasDirectKeys = true
	return nil
}

// readStartupKey loads a .BEK external-key file from path (spec.md §6).
func (c *credentials) readStartupKey(path string) error {
	ek, err := device.ReadStartupKeyFile(path)
	if err != nil {
		return &errs.CredError{Kind: errs.BadStartupKeyFile, Err: err}
	}
	c.startupKey = ek
	return nil
}

// protectors builds the crypto.Protectors view UnwrapVMK consumes.
func (c *credentials) protectors() crypto.Protectors {
	return crypto.Protectors{
		PasswordHash:      c.passwordHash,
		HasPassword:       c.hasPassword,
		RecoveryHash:       c.recoveryHash,
		HasRecoveryPass:   c.hasRecoveryPass,
		StartupKey:        c.startupKey,
		StretchIterations: c.stretchIterations,
	}
}

// wipe zeroes every byte of key material this bag holds (spec.md §5: "key
// material is zeroed on every exit path, including error paths").
func (c *credentials) wipe() {
	zero32(&c.passwordHash)
	zero32(&c.recoveryHash)
	zeroBytes(c.fvek)
	zeroBytes(c.tweak)
	c.fvek = nil
	c.tweak = nil
	c.hasPassword = false
	c.hasRecoveryPass = false
	c.hasDirectKeys = false
	if c.startupKey != nil && c.startupKey.Key != nil {
		zeroBytes(c.startupKey.Key.KeyData)
	}
	c.startupKey = nil
}

func zero32(b *[32]byte) {
	for i := range b {
		b[i] = 0
	}
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
