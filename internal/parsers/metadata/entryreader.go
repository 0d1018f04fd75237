// Package metadata implements the FVE metadata block header parser (C3),
// the tagged metadata-entry reader (C4), and metadata assembly (C6).
package metadata

import (
	"fmt"

	"github.com/deploymenttheory/go-bde/internal/errs"
	"github.com/deploymenttheory/go-bde/internal/types"
)

// ReadEntries decodes a bounded byte slice into a sequence of owned
// MetadataEntry values, stopping at the first 8-byte all-zero sentinel or
// when fewer than 8 bytes remain (spec.md §3, §4.3). It is the single
// decoder every composite (StretchKey, VolumeMasterKey, ExternalKey) and
// the top-level entry stream invoke on their own bounded slice, per
// spec.md §9 ("single function, bounded slice, owned entries").
//
// ReadEntries returns (entries, trailing), where trailing is whatever
// bytes remain once either terminating condition is reached.
func ReadEntries(buf []byte) ([]types.MetadataEntry, []byte, error) {
	var entries []types.MetadataEntry
	p := 0

	for {
		remaining := len(buf) - p
		if remaining < types.EntryHeaderSize {
			return entries, buf[p:], nil
		}
		header := buf[p : p+types.EntryHeaderSize]
		if isZero(header) {
			return entries, buf[p:], nil
		}

		size := types.ReadUint16LE(header[0:2])
		entryType := types.EntryType(types.ReadUint16LE(header[2:4]))
		valueType := types.ValueType(types.ReadUint16LE(header[4:6]))
		version := types.ReadUint16LE(header[6:8])

		if size < types.EntryHeaderSize || int(size) > remaining {
			return entries, nil, &errs.FormatError{
				Kind:  errs.BadEntry,
				Field: "metadata_entry.size",
				Err:   fmt.Errorf("size %d out of bounds (remaining %d)", size, remaining),
			}
		}
		if version != types.EntryVersion1 && version != types.EntryVersion3 {
			return entries, nil, &errs.FormatError{
				Kind:  errs.BadEntry,
				Field: "metadata_entry.version",
				Err:   fmt.Errorf("unexpected entry version %d", version),
			}
		}

		valueData := make([]byte, int(size)-types.EntryHeaderSize)
		copy(valueData, buf[p+types.EntryHeaderSize:p+int(size)])

		entries = append(entries, types.MetadataEntry{
			Size:      size,
			EntryType: entryType,
			ValueType: valueType,
			Version:   version,
			ValueData: valueData,
		})

		p += int(size)
	}
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
