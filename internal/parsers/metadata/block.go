package metadata

import (
	"fmt"
	"io"

	"github.com/deploymenttheory/go-bde/internal/errs"
	"github.com/deploymenttheory/go-bde/internal/types"
)

// blockHeaderSize returns the on-disk size of a FVE block header for the
// given version: 48 bytes for v1 (Vista), 64 for v2 (Win7/ToGo), per the
// byte ranges ParseBlockHeader reads.
func blockHeaderSize(version types.BlockHeaderVersion) int {
	if version == types.BlockHeaderVersion2 {
		return types.BlockHeaderV2Size
	}
	return types.BlockHeaderV1Size
}

// ReadBlockAt reads and assembles the complete FVE metadata block
// (block header, metadata header, and entry stream) found at offset in
// stream (spec.md §4.2–§4.4): one composed read covering C3, C4, and C6.
// volumeOffsets is the parent volume header's own mirrored offset triple;
// the block's self-reported triple must match it bit-exact (spec.md §4.2,
// §8's "Mirror invariant") or this returns FormatError::MirrorMismatch.
func ReadBlockAt(stream io.ReaderAt, offset uint64, volumeOffsets [3]uint64) (*types.Metadata, error) {
	// The widest block header (v2, 64 bytes) plus the 48-byte metadata
	// header that always immediately follows it, whichever version this
	// block turns out to be.
	head := make([]byte, types.BlockHeaderV2Size+types.MetadataHeaderSize)
	if _, err := stream.ReadAt(head, int64(offset)); err != nil {
		return nil, &errs.IoError{Kind: errs.Backend, Err: fmt.Errorf("read block header at 0x%x: %w", offset, err)}
	}

	block, err := ParseBlockHeader(head)
	if err != nil {
		return nil, err
	}
	if err := ValidateMirror(block, volumeOffsets); err != nil {
		return nil, err
	}

	hdrSize := blockHeaderSize(block.Version)
	metaHeaderBuf := head[hdrSize : hdrSize+types.MetadataHeaderSize]
	metaHeader, err := ParseMetadataHeader(metaHeaderBuf)
	if err != nil {
		return nil, err
	}

	if metaHeader.MetadataSize < types.MetadataHeaderSize {
		return nil, &errs.FormatError{Kind: errs.SizeOutOfBounds, Field: "metadata_size",
			Err: fmt.Errorf("metadata_size %d smaller than header size %d", metaHeader.MetadataSize, types.MetadataHeaderSize)}
	}
	entryLen := int(metaHeader.MetadataSize) - types.MetadataHeaderSize

	entryData := make([]byte, entryLen)
	entryOffset := int64(offset) + int64(hdrSize) + int64(types.MetadataHeaderSize)
	if entryLen > 0 {
		if _, err := stream.ReadAt(entryData, entryOffset); err != nil {
			return nil, &errs.IoError{Kind: errs.Backend, Err: fmt.Errorf("read entry stream at 0x%x: %w", entryOffset, err)}
		}
	}

	return Assemble(block, metaHeader, entryData)
}
