package metadata

import (
	"bytes"
	"fmt"

	"github.com/deploymenttheory/go-bde/internal/errs"
	"github.com/deploymenttheory/go-bde/internal/types"
)

// ParseBlockHeader decodes a FVE metadata block header (C3, spec.md §4.2,
// §6) from data, which must begin at one of the volume header's three
// declared metadata offsets.
func ParseBlockHeader(data []byte) (*types.BlockHeader, error) {
	if len(data) < types.BlockHeaderV1Size {
		return nil, &errs.FormatError{Kind: errs.SizeOutOfBounds, Field: "block_header",
			Err: fmt.Errorf("need at least %d bytes, got %d", types.BlockHeaderV1Size, len(data))}
	}
	if !bytes.Equal(data[0:8], types.Signature[:]) {
		return nil, &errs.FormatError{Kind: errs.BadSignature, Field: "block_header.signature",
			Err: fmt.Errorf("expected %q, got %q", types.Signature[:], data[0:8])}
	}

	version := types.BlockHeaderVersion(types.ReadUint16LE(data[10:12]))
	bh := &types.BlockHeader{Version: version}

	switch version {
	case types.BlockHeaderVersion1:
		bh.FirstMetadataOffset = types.ReadUint64LE(data[16:24])
		bh.SecondMetadataOffset = types.ReadUint64LE(data[24:32])
		bh.ThirdMetadataOffset = types.ReadUint64LE(data[32:40])
		bh.MFTMirrorClusterBlock = types.ReadUint64LE(data[40:48])
	case types.BlockHeaderVersion2:
		if len(data) < types.BlockHeaderV2Size {
			return nil, &errs.FormatError{Kind: errs.SizeOutOfBounds, Field: "block_header",
				Err: fmt.Errorf("v2 header needs %d bytes, got %d", types.BlockHeaderV2Size, len(data))}
		}
		bh.EncryptedVolumeSize = types.ReadUint64LE(data[16:24])
		bh.NumberOfVolumeHeaderSectors = types.ReadUint32LE(data[28:32])
		bh.FirstMetadataOffset = types.ReadUint64LE(data[32:40])
		bh.SecondMetadataOffset = types.ReadUint64LE(data[40:48])
		bh.ThirdMetadataOffset = types.ReadUint64LE(data[48:56])
		bh.VolumeHeaderOffset = types.ReadUint64LE(data[56:64])
	default:
		return nil, &errs.FormatError{Kind: errs.BadVersion, Field: "block_header.version",
			Err: fmt.Errorf("unexpected block header version %d", version)}
	}

	return bh, nil
}

// ParseMetadataHeader decodes the 48-byte metadata header immediately
// following a BlockHeader (spec.md §4.2, §6), validating that
// metadata_size_copy matches metadata_size and that metadata_size does not
// exceed the 64 KiB ceiling.
func ParseMetadataHeader(data []byte) (*types.MetadataHeader, error) {
	if len(data) < types.MetadataHeaderSize {
		return nil, &errs.FormatError{Kind: errs.SizeOutOfBounds, Field: "metadata_header",
			Err: fmt.Errorf("need %d bytes, got %d", types.MetadataHeaderSize, len(data))}
	}

	mh := &types.MetadataHeader{
		MetadataSize:         types.ReadUint32LE(data[0:4]),
		Version:              types.ReadUint32LE(data[4:8]),
		MetadataHeaderSize:   types.ReadUint32LE(data[8:12]),
		MetadataSizeCopy:     types.ReadUint32LE(data[12:16]),
		VolumeIdentifier:     types.ReadGUID(data[16:32]),
		NextNonceCounter:     types.ReadUint32LE(data[32:36]),
		EncryptionMethod:     types.EncryptionMethod(types.ReadUint16LE(data[36:38])),
		EncryptionMethodCopy: types.EncryptionMethod(types.ReadUint16LE(data[38:40])),
		CreationTime:         types.FileTime(types.ReadUint64LE(data[40:48])),
	}

	if mh.MetadataSize != mh.MetadataSizeCopy {
		return nil, &errs.FormatError{Kind: errs.Inconsistent, Field: "metadata_size",
			Err: fmt.Errorf("metadata_size %d != metadata_size_copy %d", mh.MetadataSize, mh.MetadataSizeCopy)}
	}
	if mh.MetadataSize > types.MaxFVEMetadataSize {
		return nil, &errs.FormatError{Kind: errs.SizeOutOfBounds, Field: "metadata_size",
			Err: fmt.Errorf("metadata_size %d exceeds %d byte ceiling", mh.MetadataSize, types.MaxFVEMetadataSize)}
	}

	return mh, nil
}

// ValidateMirror cross-checks a block's own mirrored offset triple against
// the parent volume header's triple (spec.md §4.2 "any mismatch is
// MirrorMismatch").
func ValidateMirror(block *types.BlockHeader, volume [3]uint64) error {
	got := [3]uint64{block.FirstMetadataOffset, block.SecondMetadataOffset, block.ThirdMetadataOffset}
	if got != volume {
		return &errs.FormatError{Kind: errs.MirrorMismatch, Field: "metadata_offsets",
			Err: fmt.Errorf("block offsets %v != volume header offsets %v", got, volume)}
	}
	return nil
}
