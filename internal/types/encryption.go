package types

// EncryptionMethod is the 16-bit encryption-method tag carried in the FVE
// metadata header and re-validated against the decrypted FVEK payload size.
type EncryptionMethod uint16

// Encryption methods, as laid out on disk (spec.md §6).
const (
	EncryptionMethodNone             EncryptionMethod = 0x0000
	EncryptionMethodAES128CBCDiffuser EncryptionMethod = 0x1000
	EncryptionMethodAES256CBCDiffuser EncryptionMethod = 0x2000
	EncryptionMethodAES128CBC        EncryptionMethod = 0x8000
	EncryptionMethodAES256CBC        EncryptionMethod = 0x8001
	EncryptionMethodAES128XTS        EncryptionMethod = 0x8002
	EncryptionMethodAES256XTS        EncryptionMethod = 0x8003
)

// String renders the method as its conventional name; unrecognized values
// are rendered numerically so unlock-time UnsupportedMethod errors can
// still name the offending value.
func (m EncryptionMethod) String() string {
	switch m {
	case EncryptionMethodNone:
		return "none"
	case EncryptionMethodAES128CBCDiffuser:
		return "AES-128-CBC+diffuser"
	case EncryptionMethodAES256CBCDiffuser:
		return "AES-256-CBC+diffuser"
	case EncryptionMethodAES128CBC:
		return "AES-128-CBC"
	case EncryptionMethodAES256CBC:
		return "AES-256-CBC"
	case EncryptionMethodAES128XTS:
		return "AES-128-XTS"
	case EncryptionMethodAES256XTS:
		return "AES-256-XTS"
	default:
		return "unknown"
	}
}

// HasDiffuser reports whether the method layers the Elephant diffuser atop
// AES-CBC.
func (m EncryptionMethod) HasDiffuser() bool {
	return m == EncryptionMethodAES128CBCDiffuser || m == EncryptionMethodAES256CBCDiffuser
}

// IsXTS reports whether the method is one of the AES-XTS variants.
func (m EncryptionMethod) IsXTS() bool {
	return m == EncryptionMethodAES128XTS || m == EncryptionMethodAES256XTS
}

// IsCBC reports whether the method is a CBC variant (diffuser or plain).
func (m EncryptionMethod) IsCBC() bool {
	switch m {
	case EncryptionMethodAES128CBCDiffuser, EncryptionMethodAES256CBCDiffuser,
		EncryptionMethodAES128CBC, EncryptionMethodAES256CBC:
		return true
	default:
		return false
	}
}

// ProtectionType identifies how a VolumeMasterKey entry's wrapped key is
// itself protected (spec.md §3).
type ProtectionType uint16

const (
	ProtectionTypeClear             ProtectionType = 0x0001
	ProtectionTypeTPM               ProtectionType = 0x0100
	ProtectionTypeStartupKey        ProtectionType = 0x0200
	ProtectionTypeRecoveryPassword  ProtectionType = 0x0800
	ProtectionTypePassword          ProtectionType = 0x2000
)

func (p ProtectionType) String() string {
	switch p {
	case ProtectionTypeClear:
		return "clear-key"
	case ProtectionTypeTPM:
		return "tpm"
	case ProtectionTypeStartupKey:
		return "startup-key"
	case ProtectionTypeRecoveryPassword:
		return "recovery-password"
	case ProtectionTypePassword:
		return "password"
	default:
		return "unknown"
	}
}

// EntryType is the 16-bit classifier of a MetadataEntry's purpose.
type EntryType uint16

const (
	EntryTypeVolumeMasterKey       EntryType = 0x0008
	EntryTypeFullVolumeEncryptionKey EntryType = 0x000b
	EntryTypeDescription           EntryType = 0x0007
	EntryTypeVolumeHeaderBlock     EntryType = 0x000f
	EntryTypeStartupKey            EntryType = 0x0009
)

// ValueType is the 16-bit schema tag of a MetadataEntry's payload.
type ValueType uint16

const (
	ValueTypeKey                ValueType = 0x0001
	ValueTypeUnicodeString      ValueType = 0x0002
	ValueTypeStretchKey         ValueType = 0x0003
	ValueTypeAesCcmEncryptedKey ValueType = 0x0005
	ValueTypeVolumeMasterKey    ValueType = 0x0008
	ValueTypeOffsetAndSize      ValueType = 0x000f
)
