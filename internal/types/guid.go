// Package types implements on-disk data structures for BitLocker Drive
// Encryption (BDE / FVE) volumes.
package types

import "fmt"

// GUID is a 16-byte little-endian-encoded globally unique identifier, used
// on disk for the volume identifier and every key-protector identifier.
type GUID [16]byte

// String renders the GUID in the canonical
// "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx" form. The first three fields are
// stored little-endian on disk; the last two are stored as a flat byte run.
func (g GUID) String() string {
	return fmt.Sprintf(
		"%08x-%04x-%04x-%04x-%012x",
		uint32(g[3])<<24|uint32(g[2])<<16|uint32(g[1])<<8|uint32(g[0]),
		uint16(g[5])<<8|uint16(g[4]),
		uint16(g[7])<<8|uint16(g[6]),
		uint16(g[8])<<8|uint16(g[9]),
		g[10:16],
	)
}

// IsZero reports whether the GUID is all zero bytes.
func (g GUID) IsZero() bool {
	return g == GUID{}
}

// FileTime is a Windows FILETIME: the number of 100-nanosecond intervals
// since 1601-01-01T00:00:00Z, stored little-endian on disk.
type FileTime uint64

const fileTimeEpochOffsetSeconds = 11644473600

// Unix returns the FILETIME converted to Unix seconds and nanoseconds.
func (f FileTime) Unix() (sec int64, nsec int64) {
	hundredNanos := int64(f)
	sec = hundredNanos/10_000_000 - fileTimeEpochOffsetSeconds
	nsec = (hundredNanos % 10_000_000) * 100
	return sec, nsec
}
