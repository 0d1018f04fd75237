package bde

import "github.com/deploymenttheory/go-bde/internal/types"

// KeyProtector is a read-only handle onto one VolumeMasterKey entry from
// the volume's active metadata block (C13, spec.md §3, §6). Available
// even while the volume is locked, since protector enumeration only reads
// already-parsed metadata and never touches key material
// (internal/services/volume_service.go's read-only accessor pattern,
// adapted from apfs/pkg/crypto/keybag.go's KeybagEntry).
type KeyProtector struct {
	vmk *types.VolumeMasterKey
}

// Identifier returns the protector's VMK identifier GUID.
func (p KeyProtector) Identifier() types.GUID { return p.vmk.Identifier }

// ProtectionType returns the protector class (clear, TPM, startup-key,
// recovery-password, or password).
func (p KeyProtector) ProtectionType() types.ProtectionType { return p.vmk.ProtectionType }

// DisplayName returns the protector's human-readable label, or "" if none
// was carried.
func (p KeyProtector) DisplayName() string { return p.vmk.DisplayName }

// ModificationTime returns the protector's FILETIME-derived last-modified
// timestamp.
func (p KeyProtector) ModificationTime() types.FileTime { return p.vmk.ModificationTime }
