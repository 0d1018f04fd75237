// Package header implements the BDE volume header parser (C2, spec.md
// §4.1): the leading 512-byte sector identifying format version and
// sector geometry.
package header

import (
	"bytes"
	"fmt"

	"github.com/deploymenttheory/go-bde/internal/errs"
	"github.com/deploymenttheory/go-bde/internal/types"
)

const volumeHeaderSize = 512

// VolumeHeaderReader exposes the parsed volume header, following the
// teacher's NewXxxReader(data, endian) (interfaces.Xxx, error) constructor
// shape (internal/parsers/container/container_superblock_reader.go).
type VolumeHeaderReader struct {
	header *types.VolumeHeader
}

// NewVolumeHeaderReader parses the first 512 bytes of a volume into a
// VolumeHeaderReader. data must be at least 512 bytes.
func NewVolumeHeaderReader(data []byte) (*VolumeHeaderReader, error) {
	if len(data) < volumeHeaderSize {
		return nil, &errs.FormatError{Kind: errs.SizeOutOfBounds, Field: "volume_header",
			Err: fmt.Errorf("need at least %d bytes, got %d", volumeHeaderSize, len(data))}
	}

	version, err := identifyVersion(data)
	if err != nil {
		return nil, err
	}

	bytesPerSector := types.ReadUint16LE(data[11:13])
	if !validSectorSize(bytesPerSector) {
		return nil, &errs.FormatError{Kind: errs.BadGeometry, Field: "bytes_per_sector",
			Err: fmt.Errorf("unexpected sector size %d", bytesPerSector)}
	}

	h := &types.VolumeHeader{
		Version:        version,
		BytesPerSector: bytesPerSector,
		MetadataSize:   types.DefaultFVEMetadataSize,
	}

	switch version {
	case types.VolumeVersionVista:
		h.FirstMetadataOffset = types.ReadUint64LE(data[0x1A0:0x1A8])
		h.SecondMetadataOffset = types.ReadUint64LE(data[0x1A8:0x1B0])
		h.ThirdMetadataOffset = types.ReadUint64LE(data[0x1B0:0x1B8])
	default: // Win7 / ToGo
		h.FirstMetadataOffset = types.ReadUint64LE(data[0x1B0:0x1B8])
		h.SecondMetadataOffset = types.ReadUint64LE(data[0x1B8:0x1C0])
		h.ThirdMetadataOffset = types.ReadUint64LE(data[0x1C0:0x1C8])
	}

	if err := validateOffsetTriple(h.FirstMetadataOffset, h.SecondMetadataOffset, h.ThirdMetadataOffset, bytesPerSector); err != nil {
		return nil, err
	}

	return &VolumeHeaderReader{header: h}, nil
}

// identifyVersion applies the §4.1 signature/discriminator rules: a
// Vista-layout header carries "-FVE-FS-" at bytes [3:11]; a Win7/ToGo
// header carries an x86 JMP-SHORT opcode at [0:3] and the same signature
// at [3:11], disambiguated from each other by the partition-type GUID at
// offset 0x30.
func identifyVersion(data []byte) (types.VolumeVersion, error) {
	sig := data[3:11]
	if !bytes.Equal(sig, types.Signature[:]) {
		return 0, &errs.FormatError{Kind: errs.BadSignature, Field: "signature",
			Err: fmt.Errorf("expected %q at offset 3, got %q", types.Signature[:], sig)}
	}

	isJump := data[0] == 0xEB && data[2] == 0x90
	if !isJump {
		return types.VolumeVersionVista, nil
	}

	guid := types.ReadGUID(data[0x30:0x40])
	switch guid {
	case types.ToGoIdentifier:
		return types.VolumeVersionToGo, nil
	case types.Win7Identifier:
		return types.VolumeVersionWin7, nil
	default:
		// A jump-short stub with the FVE signature but an unrecognized
		// partition GUID is still a Win7-layout volume; the GUID is a
		// secondary discriminator only (spec.md §4.1).
		return types.VolumeVersionWin7, nil
	}
}

func validSectorSize(n uint16) bool {
	for _, v := range types.ValidSectorSizes {
		if v == n {
			return true
		}
	}
	return false
}

func validateOffsetTriple(a, b, c uint64, bytesPerSector uint16) error {
	if a == 0 || b == 0 || c == 0 {
		return &errs.FormatError{Kind: errs.BadGeometry, Field: "metadata_offsets",
			Err: fmt.Errorf("zero metadata offset: %d, %d, %d", a, b, c)}
	}
	if a == b || b == c || a == c {
		return &errs.FormatError{Kind: errs.BadGeometry, Field: "metadata_offsets",
			Err: fmt.Errorf("non-distinct metadata offsets: %d, %d, %d", a, b, c)}
	}
	stride := uint64(bytesPerSector)
	if a%stride != 0 || b%stride != 0 || c%stride != 0 {
		return &errs.FormatError{Kind: errs.BadGeometry, Field: "metadata_offsets",
			Err: fmt.Errorf("metadata offsets %d, %d, %d are not sector-aligned (sector size %d)", a, b, c, bytesPerSector)}
	}
	return nil
}

// Header returns the parsed volume header.
func (r *VolumeHeaderReader) Header() *types.VolumeHeader { return r.header }

// Version returns the identified format version.
func (r *VolumeHeaderReader) Version() types.VolumeVersion { return r.header.Version }

// BytesPerSector returns the volume's sector size.
func (r *VolumeHeaderReader) BytesPerSector() uint16 { return r.header.BytesPerSector }

// MetadataOffsets returns the three redundant FVE metadata offsets.
func (r *VolumeHeaderReader) MetadataOffsets() [3]uint64 { return r.header.MetadataOffsets() }
