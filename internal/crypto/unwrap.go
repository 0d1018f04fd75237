package crypto

import (
	"fmt"

	"github.com/deploymenttheory/go-bde/internal/errs"
	"github.com/deploymenttheory/go-bde/internal/types"
)

// Protectors bundles every credential the caller has supplied; UnwrapVMK
// tries them against the metadata's VolumeMasterKeys in priority order —
// clear key, then startup key, then password, then recovery password
// (spec.md §4.6: clear-key volumes never require a protector at all, so
// they are tried first; TPM-protected VMKs are out of scope per spec.md's
// Non-goals since this library has no TPM access). PasswordHash and
// RecoveryHash are already-hashed (spec.md §3's Credentials bag stores
// `password_hash`/`recovery_password_hash`, not the raw secret, so hashing
// happens once at set-time rather than on every unlock attempt).
type Protectors struct {
	PasswordHash      [32]byte
	HasPassword       bool
	RecoveryHash      [32]byte
	HasRecoveryPass   bool
	StartupKey        *types.ExternalKey
	StretchIterations uint32 // 0 means StretchIterations (the on-disk default)
}

// UnwrapVMK finds the first VolumeMasterKey this Protectors bundle can
// unwrap and returns its 32-byte plaintext VMK. A MAC failure against one
// protector is swallowed and the next protector is tried; only exhausting
// every protector returns UnlockError::NoKey (spec.md §4.6, §7).
func UnwrapVMK(meta *types.Metadata, p Protectors) ([]byte, error) {
	if vmk := meta.ClearVMK(); vmk != nil {
		if key, err := unwrapClear(vmk); err == nil {
			return key, nil
		}
	}
	if p.StartupKey != nil && p.StartupKey.Key != nil {
		// spec.md §4.4's exception: the usable VMK is the one whose
		// identifier matches the loaded external-key file, not simply the
		// first startup-key-protected VMK encountered.
		vmk := meta.VMKByIdentifier(p.StartupKey.Identifier)
		if vmk == nil {
			vmk = meta.StartupVMK()
		}
		if vmk != nil {
			if key, err := unwrapWrapped(vmk, p.StartupKey.Key.KeyData); err == nil {
				return key, nil
			}
		}
	}
	if vmk := meta.PasswordVMK(); vmk != nil && p.HasPassword {
		if key, err := unwrapWithHash(vmk, p.PasswordHash, p.stretchIterations()); err == nil {
			return key, nil
		}
	}
	if vmk := meta.RecoveryPasswordVMK(); vmk != nil && p.HasRecoveryPass {
		if key, err := unwrapWithHash(vmk, p.RecoveryHash, p.stretchIterations()); err == nil {
			return key, nil
		}
	}
	return nil, &errs.UnlockError{Kind: errs.NoKey, Err: fmt.Errorf("no usable protector for any volume master key")}
}

func (p Protectors) stretchIterations() uint32 {
	if p.StretchIterations == 0 {
		return StretchIterations
	}
	return p.StretchIterations
}

func unwrapClear(vmk *types.VolumeMasterKey) ([]byte, error) {
	if vmk.Key == nil {
		return nil, &errs.UnlockError{Kind: errs.BadVmkLayout, Err: fmt.Errorf("clear-key VMK missing Key property")}
	}
	return vmk.Key.KeyData, nil
}

// unwrapWithHash stretches an already-hashed password or recovery-password
// digest against vmk's StretchKey salt and uses the result to unwrap vmk's
// wrapped key (spec.md §4.5, §4.6).
func unwrapWithHash(vmk *types.VolumeMasterKey, hash [32]byte, iterations uint32) ([]byte, error) {
	if vmk.StretchKey == nil {
		return nil, &errs.UnlockError{Kind: errs.BadVmkLayout, Err: fmt.Errorf("VMK missing stretch key")}
	}
	derived := StretchKey(hash, vmk.StretchKey.Salt, iterations)
	return unwrapWrapped(vmk, derived[:])
}

// unwrapWrapped AES-CCM-decrypts vmk's WrappedKey under key, then parses
// the resulting plaintext's fixed header to pull out the 32-byte VMK
// (spec.md §4.6): bytes [16:18] are a little-endian data_size, [20:22] a
// version; for version==1 and data_size==0x2C the VMK occupies
// plaintext[28:60].
func unwrapWrapped(vmk *types.VolumeMasterKey, key []byte) ([]byte, error) {
	if vmk.WrappedKey == nil {
		return nil, &errs.UnlockError{Kind: errs.BadVmkLayout, Err: fmt.Errorf("VMK missing wrapped key")}
	}
	plain, err := Open(key, vmk.WrappedKey.Nonce(), vmk.WrappedKey.Data)
	if err != nil {
		return nil, err
	}
	if len(plain) < 60 {
		return nil, &errs.UnlockError{Kind: errs.BadVmkLayout, Err: fmt.Errorf("decrypted VMK blob too short: %d bytes", len(plain))}
	}

	dataSize := types.ReadUint16LE(plain[16:18])
	version := types.ReadUint16LE(plain[20:22])
	if version != 1 || dataSize != 0x2C {
		return nil, &errs.UnlockError{Kind: errs.BadVmkLayout,
			Err: fmt.Errorf("unexpected VMK blob layout: version=%d data_size=0x%x", version, dataSize)}
	}

	out := make([]byte, 32)
	copy(out, plain[28:60])
	return out, nil
}

// fvekLayout describes where, within a decrypted FVEK blob, the encryption
// key and (for diffuser and XTS modes) the paired tweak/diffuser key live,
// keyed by the metadata's declared encryption method (spec.md §4.6's
// method/data_size/FVEK-bytes/tweak-bytes table).
type fvekLayout struct {
	dataSize   uint16
	keyOffset  int
	keyLen     int
	tweakOffset int
	tweakLen    int
}

func layoutFor(method types.EncryptionMethod) (fvekLayout, bool) {
	switch method {
	case types.EncryptionMethodAES128CBC:
		return fvekLayout{dataSize: 0x1C, keyOffset: 28, keyLen: 16}, true
	case types.EncryptionMethodAES256CBC:
		return fvekLayout{dataSize: 0x2C, keyOffset: 28, keyLen: 32}, true
	case types.EncryptionMethodAES128CBCDiffuser:
		// The on-disk blob reserves a 32-byte range for "AES key + Elephant
		// key" and a separate 32-byte tweak range; only the first 16 bytes
		// of the key range are the actual AES-128 key (spec.md §4.6).
		return fvekLayout{dataSize: 0x4C, keyOffset: 28, keyLen: 16, tweakOffset: 60, tweakLen: 16}, true
	case types.EncryptionMethodAES256CBCDiffuser:
		return fvekLayout{dataSize: 0x4C, keyOffset: 28, keyLen: 32, tweakOffset: 60, tweakLen: 32}, true
	case types.EncryptionMethodAES128XTS:
		return fvekLayout{dataSize: 0x2C, keyOffset: 28, keyLen: 16, tweakOffset: 44, tweakLen: 16}, true
	case types.EncryptionMethodAES256XTS:
		return fvekLayout{dataSize: 0x4C, keyOffset: 28, keyLen: 32, tweakOffset: 60, tweakLen: 32}, true
	default:
		return fvekLayout{}, false
	}
}

// UnwrapFVEK AES-CCM-decrypts the metadata block's FVEK+tweak blob under
// the unwrapped VMK, validates its layout against the metadata's declared
// encryption method, and returns an EncryptionContext ready to decrypt
// sectors (spec.md §4.6).
func UnwrapFVEK(meta *types.Metadata, vmkKey []byte) (*EncryptionContext, error) {
	if meta.Fvek == nil {
		return nil, &errs.UnlockError{Kind: errs.BadFvekLayout, Err: fmt.Errorf("metadata has no FVEK entry")}
	}
	plain, err := Open(vmkKey, meta.Fvek.Nonce(), meta.Fvek.Data)
	if err != nil {
		return nil, err
	}
	if len(plain) < 22 {
		return nil, &errs.UnlockError{Kind: errs.BadFvekLayout, Err: fmt.Errorf("decrypted FVEK blob too short: %d bytes", len(plain))}
	}

	method := meta.MetadataHeader.EncryptionMethod
	layout, ok := layoutFor(method)
	if !ok {
		return nil, &errs.UnlockError{Kind: errs.UnsupportedMethod, Err: fmt.Errorf("unsupported encryption method %s", method)}
	}

	dataSize := types.ReadUint16LE(plain[16:18])
	if dataSize != layout.dataSize {
		return nil, &errs.UnlockError{Kind: errs.BadFvekLayout,
			Err: fmt.Errorf("FVEK blob data_size 0x%x does not match method %s (want 0x%x)", dataSize, method, layout.dataSize)}
	}
	if len(plain) < layout.keyOffset+layout.keyLen {
		return nil, &errs.UnlockError{Kind: errs.BadFvekLayout, Err: fmt.Errorf("FVEK blob too short for method %s", method)}
	}
	fvekKey := append([]byte(nil), plain[layout.keyOffset:layout.keyOffset+layout.keyLen]...)

	var tweakKey []byte
	if layout.tweakLen > 0 {
		if len(plain) < layout.tweakOffset+layout.tweakLen {
			return nil, &errs.UnlockError{Kind: errs.BadFvekLayout, Err: fmt.Errorf("FVEK blob too short for tweak of method %s", method)}
		}
		tweakKey = append([]byte(nil), plain[layout.tweakOffset:layout.tweakOffset+layout.tweakLen]...)
	}

	return NewEncryptionContext(method, fvekKey, tweakKey)
}
