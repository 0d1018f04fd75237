package interfaces

import "github.com/deploymenttheory/go-bde/internal/types"

// VolumeHeaderReader exposes the decoded leading 512-byte sector of a BDE
// volume (spec.md §3, §4.1).
type VolumeHeaderReader interface {
	Header() *types.VolumeHeader
	Version() types.VolumeVersion
	BytesPerSector() uint16
	MetadataOffsets() [3]uint64
}
