package metadata

import (
	"fmt"

	"github.com/deploymenttheory/go-bde/internal/errs"
	"github.com/deploymenttheory/go-bde/internal/parsers/properties"
	"github.com/deploymenttheory/go-bde/internal/types"
)

// Assemble walks one FVE metadata block's entry stream and classifies its
// entries into a types.Metadata (C6, spec.md §4.4): volume master keys
// grouped by protection type (first-wins per class, per the open-question
// decision recorded in DESIGN.md), the FVEK+tweak blob, the human-readable
// description, the in-volume startup-key record, and anything this parser
// does not recognize, retained but ignored per spec.md's tolerance policy.
func Assemble(block *types.BlockHeader, header *types.MetadataHeader, entryData []byte) (*types.Metadata, error) {
	entries, trailing, err := ReadEntries(entryData)
	if err != nil {
		return nil, err
	}

	m := &types.Metadata{
		BlockHeader:              *block,
		MetadataHeader:           *header,
		ClearVMKIndex:            -1,
		StartupVMKIndex:          -1,
		RecoveryPasswordVMKIndex: -1,
		PasswordVMKIndex:         -1,
		TrailingData:             trailing,
	}

	for _, entry := range entries {
		switch entry.EntryType {
		case types.EntryTypeVolumeMasterKey:
			vmk, err := properties.ParseVolumeMasterKey(entry.ValueData)
			if err != nil {
				return nil, err
			}
			m.VolumeMasterKeys = append(m.VolumeMasterKeys, *vmk)
			idx := len(m.VolumeMasterKeys) - 1
			switch vmk.ProtectionType {
			case types.ProtectionTypeClear:
				if m.ClearVMKIndex < 0 {
					m.ClearVMKIndex = idx
				}
			case types.ProtectionTypeStartupKey:
				// First-wins here is only the fallback classification; the
				// key-unwrap pipeline prefers VMKByIdentifier against a
				// loaded external-key file's identifier when one is present
				// (spec.md §4.4's startup-key exception).
				if m.StartupVMKIndex < 0 {
					m.StartupVMKIndex = idx
				}
			case types.ProtectionTypeTPM:
				// TPM-backed unlocking is out of scope (spec.md Non-goals);
				// these VMKs are kept in VolumeMasterKeys but never cached
				// as a usable protector class.
			case types.ProtectionTypeRecoveryPassword:
				if m.RecoveryPasswordVMKIndex < 0 {
					m.RecoveryPasswordVMKIndex = idx
				}
			case types.ProtectionTypePassword:
				if m.PasswordVMKIndex < 0 {
					m.PasswordVMKIndex = idx
				}
			}

		case types.EntryTypeFullVolumeEncryptionKey:
			if entry.ValueType == types.ValueTypeAesCcmEncryptedKey {
				fvek, err := properties.ParseAesCcmEncryptedKey(entry.ValueData)
				if err != nil {
					return nil, err
				}
				if m.Fvek == nil {
					m.Fvek = fvek
				} else {
					// Duplicate FVEK-like entries are retained but not
					// preferred over the first one found (DESIGN.md open
					// question #3).
					m.UnknownEntries = append(m.UnknownEntries, types.RawMetadataEntry{
						EntryType: entry.EntryType, ValueType: entry.ValueType,
						Version: entry.Version, ValueData: entry.ValueData,
					})
				}
				continue
			}
			m.UnknownEntries = append(m.UnknownEntries, types.RawMetadataEntry{
				EntryType: entry.EntryType, ValueType: entry.ValueType,
				Version: entry.Version, ValueData: entry.ValueData,
			})

		case types.EntryTypeDescription:
			if entry.ValueType == types.ValueTypeUnicodeString {
				m.Description = properties.DecodeUTF16LE(entry.ValueData)
				continue
			}
			m.UnknownEntries = append(m.UnknownEntries, types.RawMetadataEntry{
				EntryType: entry.EntryType, ValueType: entry.ValueType,
				Version: entry.Version, ValueData: entry.ValueData,
			})

		case types.EntryTypeStartupKey:
			ek, err := properties.ParseExternalKey(entry.ValueData)
			if err != nil {
				return nil, err
			}
			m.StartupKeyExternalKey = ek

		case types.EntryTypeVolumeHeaderBlock:
			// The relocated-header offset this entry carries must agree
			// with the block header's own VolumeHeaderOffset field
			// (spec.md §4.4); a mismatch means the mirrors disagree about
			// where the original boot sectors were moved to.
			if entry.ValueType == types.ValueTypeOffsetAndSize && len(entry.ValueData) >= 16 {
				relocOffset := types.ReadUint64LE(entry.ValueData[0:8])
				if block.VolumeHeaderOffset != 0 && relocOffset != block.VolumeHeaderOffset {
					return nil, &errs.FormatError{Kind: errs.Inconsistent, Field: "volume_header_block",
						Err: fmt.Errorf("entry relocation offset 0x%x does not match block header's 0x%x", relocOffset, block.VolumeHeaderOffset)}
				}
			}
			m.UnknownEntries = append(m.UnknownEntries, types.RawMetadataEntry{
				EntryType: entry.EntryType, ValueType: entry.ValueType,
				Version: entry.Version, ValueData: entry.ValueData,
			})

		default:
			m.UnknownEntries = append(m.UnknownEntries, types.RawMetadataEntry{
				EntryType: entry.EntryType, ValueType: entry.ValueType,
				Version: entry.Version, ValueData: entry.ValueData,
			})
		}
	}

	return m, nil
}
