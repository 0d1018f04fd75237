package types

// VolumeVersion identifies which BDE on-disk layout generation produced a
// volume (spec.md §3).
type VolumeVersion int

const (
	VolumeVersionVista VolumeVersion = 1
	VolumeVersionWin7  VolumeVersion = 2
	VolumeVersionToGo  VolumeVersion = 3
)

func (v VolumeVersion) String() string {
	switch v {
	case VolumeVersionVista:
		return "vista"
	case VolumeVersionWin7:
		return "windows7"
	case VolumeVersionToGo:
		return "togo"
	default:
		return "unknown"
	}
}

// Signature is the 8-byte ASCII marker "-FVE-FS-" present in every BDE
// volume header, at a version-dependent byte offset.
var Signature = [8]byte{'-', 'F', 'V', 'E', '-', 'F', 'S', '-'}

// VistaIdentifier, Win7Identifier and ToGoIdentifier are the partition-type
// GUIDs (stored at offset 0x30 of the volume header) that disambiguate the
// Win7/ToGo layout from each other once the signature has matched. Windows
// tags each BDE generation with a distinct GUID; the exact values are a
// deployment detail of the driver, not the wire format itself.
// NewVolumeHeaderReader compares against these package-level values and
// takes no option to substitute others.
var (
	VistaIdentifier = GUID{0x3B, 0xD6, 0x67, 0x49, 0x29, 0x2E, 0xD8, 0x4A,
		0x83, 0x99, 0xF6, 0xA3, 0x39, 0xE3, 0xD0, 0x01}
	Win7Identifier = GUID{0x4C, 0x9D, 0x5A, 0x72, 0xE3, 0x7E, 0x2A, 0x43,
		0x93, 0x3C, 0x40, 0x74, 0x7B, 0x6F, 0x57, 0x81}
	ToGoIdentifier = GUID{0x2D, 0xE1, 0x7F, 0x9F, 0xB4, 0x53, 0xB8, 0x4F,
		0xB7, 0xE9, 0x2C, 0x22, 0x6D, 0xFE, 0xAF, 0x5D}
)

// Valid values for VolumeHeader.BytesPerSector.
var ValidSectorSizes = [4]uint16{512, 1024, 2048, 4096}

// VolumeHeader is the decoded form of the 512-byte leading sector of a BDE
// volume (spec.md §3, §4.1; on-disk layout in spec.md §6).
type VolumeHeader struct {
	Version                VolumeVersion
	BytesPerSector         uint16
	SectorsPerClusterBlock uint16
	FirstMetadataOffset    uint64
	SecondMetadataOffset   uint64
	ThirdMetadataOffset    uint64
	MetadataSize           uint64 // set to 16384 by NewVolumeHeaderReader; not updated afterwards
	VolumeSize             uint64 // finalized only after unlock, per spec.md §3
}

// MetadataOffsets returns the header's three redundant FVE block offsets in
// primary/secondary/tertiary order.
func (h *VolumeHeader) MetadataOffsets() [3]uint64 {
	return [3]uint64{h.FirstMetadataOffset, h.SecondMetadataOffset, h.ThirdMetadataOffset}
}
