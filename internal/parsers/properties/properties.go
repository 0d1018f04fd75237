// Package properties implements the typed property-object readers layered
// over MetadataEntry.ValueData (C5, spec.md §3): Key, StretchKey,
// AesCcmEncryptedKey, VolumeMasterKey, ExternalKey. StretchKey,
// VolumeMasterKey and ExternalKey recursively decode a nested entry stream
// using the same C4 decoder the top-level metadata entry stream uses
// (spec.md §9).
package properties

import (
	"fmt"

	"github.com/deploymenttheory/go-bde/internal/errs"
	"github.com/deploymenttheory/go-bde/internal/parsers/metadata"
	"github.com/deploymenttheory/go-bde/internal/types"
)

// ParseKey decodes a ValueTypeKey payload: a 4-byte encryption method
// followed by the raw key bytes (spec.md §3).
func ParseKey(data []byte) (*types.Key, error) {
	if len(data) < 4 {
		return nil, &errs.FormatError{Kind: errs.SizeOutOfBounds, Field: "key",
			Err: fmt.Errorf("payload too short: %d bytes", len(data))}
	}
	return &types.Key{
		EncryptionMethod: types.EncryptionMethod(types.ReadUint32LE(data[0:4])),
		KeyData:          append([]byte(nil), data[4:]...),
	}, nil
}

// ParseStretchKey decodes a ValueTypeStretchKey payload: a 4-byte
// encryption method, a 16-byte salt, then a nested entry stream (unused by
// the unwrap pipeline today but parsed for completeness and for the
// trailing-data invariant to hold recursively).
func ParseStretchKey(data []byte) (*types.StretchKey, error) {
	if len(data) < 20 {
		return nil, &errs.FormatError{Kind: errs.SizeOutOfBounds, Field: "stretch_key",
			Err: fmt.Errorf("payload too short: %d bytes", len(data))}
	}
	sk := &types.StretchKey{
		EncryptionMethod: types.EncryptionMethod(types.ReadUint32LE(data[0:4])),
	}
	copy(sk.Salt[:], data[4:20])
	// Nested entries (if any) are unused; ReadEntries still rejects a
	// nested entry with a bad size or version. Leftover bytes after the
	// entries are accepted unchecked.
	if _, _, err := metadata.ReadEntries(data[20:]); err != nil {
		return nil, err
	}
	return sk, nil
}

// ParseAesCcmEncryptedKey decodes a ValueTypeAesCcmEncryptedKey payload:
// an 8-byte nonce time, 4-byte nonce counter, then ciphertext including a
// trailing 16-byte MAC (spec.md §3).
func ParseAesCcmEncryptedKey(data []byte) (*types.AesCcmEncryptedKey, error) {
	const headerSize = 12
	if len(data) < headerSize+16 {
		return nil, &errs.FormatError{Kind: errs.SizeOutOfBounds, Field: "aes_ccm_encrypted_key",
			Err: fmt.Errorf("payload too short: %d bytes", len(data))}
	}
	k := &types.AesCcmEncryptedKey{
		Data: append([]byte(nil), data[headerSize:]...),
	}
	copy(k.NonceTime[:], data[0:8])
	copy(k.NonceCounter[:], data[8:12])
	return k, nil
}

// ParseVolumeMasterKey decodes a ValueTypeVolumeMasterKey payload: a
// 28-byte fixed header (identifier, modification time, unknown u16,
// protection type) followed by a nested entry stream whose recognized
// entries populate the VMK's Key/StretchKey/WrappedKey/DisplayName
// (spec.md §3, §4.4).
func ParseVolumeMasterKey(data []byte) (*types.VolumeMasterKey, error) {
	const headerSize = 28
	if len(data) < headerSize {
		return nil, &errs.FormatError{Kind: errs.SizeOutOfBounds, Field: "volume_master_key",
			Err: fmt.Errorf("payload too short: %d bytes", len(data))}
	}

	vmk := &types.VolumeMasterKey{
		Identifier:       types.ReadGUID(data[0:16]),
		ModificationTime: types.FileTime(types.ReadUint64LE(data[16:24])),
		ProtectionType:   types.ProtectionType(types.ReadUint16LE(data[26:28])),
	}

	nested, _, err := metadata.ReadEntries(data[headerSize:])
	if err != nil {
		return nil, err
	}
	for _, entry := range nested {
		switch entry.ValueType {
		case types.ValueTypeKey:
			key, err := ParseKey(entry.ValueData)
			if err != nil {
				return nil, err
			}
			vmk.Key = key
		case types.ValueTypeUnicodeString:
			vmk.DisplayName = DecodeUTF16LE(entry.ValueData)
		case types.ValueTypeStretchKey:
			sk, err := ParseStretchKey(entry.ValueData)
			if err != nil {
				return nil, err
			}
			vmk.StretchKey = sk
		case types.ValueTypeAesCcmEncryptedKey:
			wk, err := ParseAesCcmEncryptedKey(entry.ValueData)
			if err != nil {
				return nil, err
			}
			vmk.WrappedKey = wk
		}
		// Any other nested value type is tolerated and dropped, per
		// spec.md §4.4's tolerance policy.
	}
	return vmk, nil
}

// ParseExternalKey decodes a ValueTypeExternalKey-shaped payload (entry
// type 0x0009 in-volume, and the VMK-equivalent record at the head of a
// .BEK startup-key file): a 16-byte identifier, 8-byte modification time,
// then a nested entry stream carrying a Key and a description
// (spec.md §3, §6).
func ParseExternalKey(data []byte) (*types.ExternalKey, error) {
	const headerSize = 24
	if len(data) < headerSize {
		return nil, &errs.FormatError{Kind: errs.SizeOutOfBounds, Field: "external_key",
			Err: fmt.Errorf("payload too short: %d bytes", len(data))}
	}
	ek := &types.ExternalKey{
		Identifier:       types.ReadGUID(data[0:16]),
		ModificationTime: types.FileTime(types.ReadUint64LE(data[16:24])),
	}

	nested, _, err := metadata.ReadEntries(data[headerSize:])
	if err != nil {
		return nil, err
	}
	for _, entry := range nested {
		switch entry.ValueType {
		case types.ValueTypeKey:
			key, err := ParseKey(entry.ValueData)
			if err != nil {
				return nil, err
			}
			ek.Key = key
		case types.ValueTypeUnicodeString:
			ek.DisplayName = DecodeUTF16LE(entry.ValueData)
		}
	}
	return ek, nil
}
