package types

// Key carries a plaintext key fragment — e.g. inside a clear-key VMK, or
// the 32-byte secret embedded in a startup-key file (spec.md §3).
type Key struct {
	EncryptionMethod EncryptionMethod
	KeyData          []byte
}

// StretchKey carries the salt used to iterate the SHA-256-based key
// stretching function over a password or recovery-password hash
// (spec.md §3, §4.5).
type StretchKey struct {
	EncryptionMethod EncryptionMethod
	Salt             [16]byte
}

// AesCcmEncryptedKey is an AES-CCM-wrapped key blob: a VMK wrapped by a
// protector, or the FVEK+tweak wrapped by the VMK (spec.md §3).
type AesCcmEncryptedKey struct {
	NonceTime    [8]byte
	NonceCounter [4]byte
	Data         []byte // ciphertext, including the trailing 16-byte MAC
}

// Nonce returns the 12-byte AES-CCM nonce formed by concatenating the
// nonce time and nonce counter fields (spec.md §3).
func (k *AesCcmEncryptedKey) Nonce() [12]byte {
	var n [12]byte
	copy(n[:8], k.NonceTime[:])
	copy(n[8:], k.NonceCounter[:])
	return n
}

// VolumeMasterKey is one VMK entry: an identifier, the protection class it
// is wrapped under, and whichever nested property the protection class
// populated (spec.md §3, §4.4).
type VolumeMasterKey struct {
	Identifier       GUID
	ModificationTime FileTime
	ProtectionType   ProtectionType
	DisplayName      string

	// At most one of Key/StretchKey/WrappedKey is meaningfully populated,
	// depending on ProtectionType: Key for clear-key VMKs, StretchKey plus
	// WrappedKey for password/recovery-password VMKs, WrappedKey alone for
	// startup-key/TPM VMKs.
	Key         *Key
	StretchKey  *StretchKey
	WrappedKey  *AesCcmEncryptedKey
}

// ExternalKey is the identifier-plus-nested-Key structure carried by a
// startup-key (.BEK) file and, in-volume, by the startup-key entry
// (spec.md §3, §6).
type ExternalKey struct {
	Identifier       GUID
	ModificationTime FileTime
	Key              *Key
	DisplayName      string
}

// RawMetadataEntry preserves an entry whose EntryType this parser does not
// classify, per spec.md §4.4's tolerance policy ("retain but ignore").
type RawMetadataEntry struct {
	EntryType EntryType
	ValueType ValueType
	Version   uint16
	ValueData []byte
}

// Metadata is one decoded FVE metadata block: the block header, metadata
// header, full VMK list, and the convenience classification produced by
// FVE metadata assembly (spec.md §3, §4.4).
type Metadata struct {
	BlockHeader    BlockHeader
	MetadataHeader MetadataHeader

	VolumeMasterKeys []VolumeMasterKey

	// Indices into VolumeMasterKeys for the first VMK of each protection
	// class encountered, or -1 if none was found. Stored as indices, not
	// pointers, per spec.md §9 (avoid cyclic/independent-owned-pointer
	// back-references into the VMK array).
	ClearVMKIndex            int
	StartupVMKIndex          int
	RecoveryPasswordVMKIndex int
	PasswordVMKIndex         int

	Fvek        *AesCcmEncryptedKey
	Description string

	StartupKeyExternalKey *ExternalKey

	UnknownEntries []RawMetadataEntry
	TrailingData   []byte
}

// ClearVMK, StartupVMK, RecoveryPasswordVMK and PasswordVMK return the
// cached first-match VMK for each protection class, or nil.
func (m *Metadata) ClearVMK() *VolumeMasterKey            { return m.vmkAt(m.ClearVMKIndex) }
func (m *Metadata) StartupVMK() *VolumeMasterKey           { return m.vmkAt(m.StartupVMKIndex) }
func (m *Metadata) RecoveryPasswordVMK() *VolumeMasterKey  { return m.vmkAt(m.RecoveryPasswordVMKIndex) }
func (m *Metadata) PasswordVMK() *VolumeMasterKey          { return m.vmkAt(m.PasswordVMKIndex) }

func (m *Metadata) vmkAt(idx int) *VolumeMasterKey {
	if idx < 0 || idx >= len(m.VolumeMasterKeys) {
		return nil
	}
	return &m.VolumeMasterKeys[idx]
}

// VMKByIdentifier returns the VolumeMasterKey whose Identifier matches id,
// or nil. Used for the startup-key protector's exception to first-wins
// classification (spec.md §4.4): the VMK to unwrap is the one whose
// identifier equals the identifier carried by the loaded external-key
// file, not simply the first startup-key-protected VMK encountered.
func (m *Metadata) VMKByIdentifier(id GUID) *VolumeMasterKey {
	for i := range m.VolumeMasterKeys {
		if m.VolumeMasterKeys[i].Identifier == id {
			return &m.VolumeMasterKeys[i]
		}
	}
	return nil
}
