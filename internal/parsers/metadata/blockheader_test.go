package metadata

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-bde/internal/errs"
	"github.com/deploymenttheory/go-bde/internal/types"
)

func buildV1BlockHeaderBytes(first, second, third, mftMirror uint64) []byte {
	b := make([]byte, types.BlockHeaderV1Size)
	copy(b[0:8], types.Signature[:])
	binary.LittleEndian.PutUint16(b[10:12], uint16(types.BlockHeaderVersion1))
	types.PutUint64LE(b[16:24], first)
	types.PutUint64LE(b[24:32], second)
	types.PutUint64LE(b[32:40], third)
	types.PutUint64LE(b[40:48], mftMirror)
	return b
}

func buildV2BlockHeaderBytes(encryptedVolumeSize uint64, headerSectors uint32, first, second, third, headerOffset uint64) []byte {
	b := make([]byte, types.BlockHeaderV2Size)
	copy(b[0:8], types.Signature[:])
	binary.LittleEndian.PutUint16(b[10:12], uint16(types.BlockHeaderVersion2))
	types.PutUint64LE(b[16:24], encryptedVolumeSize)
	binary.LittleEndian.PutUint32(b[28:32], headerSectors)
	types.PutUint64LE(b[32:40], first)
	types.PutUint64LE(b[40:48], second)
	types.PutUint64LE(b[48:56], third)
	types.PutUint64LE(b[56:64], headerOffset)
	return b
}

func TestParseBlockHeaderV1(t *testing.T) {
	data := buildV1BlockHeaderBytes(0x4000, 0x1000000, 0x2000000, 0x99887766)

	bh, err := ParseBlockHeader(data)
	require.NoError(t, err)
	assert.Equal(t, types.BlockHeaderVersion1, bh.Version)
	assert.Equal(t, uint64(0x4000), bh.FirstMetadataOffset)
	assert.Equal(t, uint64(0x1000000), bh.SecondMetadataOffset)
	assert.Equal(t, uint64(0x2000000), bh.ThirdMetadataOffset)
	assert.Equal(t, uint64(0x99887766), bh.MFTMirrorClusterBlock)
}

func TestParseBlockHeaderV2(t *testing.T) {
	data := buildV2BlockHeaderBytes(0x10000000, 16, 0x4000, 0x1000000, 0x2000000, 0x8000000)

	bh, err := ParseBlockHeader(data)
	require.NoError(t, err)
	assert.Equal(t, types.BlockHeaderVersion2, bh.Version)
	assert.Equal(t, uint64(0x10000000), bh.EncryptedVolumeSize)
	assert.Equal(t, uint32(16), bh.NumberOfVolumeHeaderSectors)
	assert.Equal(t, uint64(0x4000), bh.FirstMetadataOffset)
	assert.Equal(t, uint64(0x1000000), bh.SecondMetadataOffset)
	assert.Equal(t, uint64(0x2000000), bh.ThirdMetadataOffset)
	assert.Equal(t, uint64(0x8000000), bh.VolumeHeaderOffset)
}

func TestParseBlockHeaderTooShort(t *testing.T) {
	_, err := ParseBlockHeader(make([]byte, 10))
	assert.Error(t, err)
}

func TestParseBlockHeaderBadSignature(t *testing.T) {
	data := buildV1BlockHeaderBytes(0, 0, 0, 0)
	copy(data[0:8], "WRONGSIG")

	_, err := ParseBlockHeader(data)
	require.Error(t, err)
	var fmtErr *errs.FormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, errs.BadSignature, fmtErr.Kind)
}

func TestParseBlockHeaderBadVersion(t *testing.T) {
	data := buildV1BlockHeaderBytes(0, 0, 0, 0)
	binary.LittleEndian.PutUint16(data[10:12], 99)

	_, err := ParseBlockHeader(data)
	require.Error(t, err)
	var fmtErr *errs.FormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, errs.BadVersion, fmtErr.Kind)
}

func TestParseBlockHeaderV2TooShortForVersion(t *testing.T) {
	data := buildV1BlockHeaderBytes(0, 0, 0, 0)
	binary.LittleEndian.PutUint16(data[10:12], uint16(types.BlockHeaderVersion2))

	_, err := ParseBlockHeader(data)
	assert.Error(t, err)
}

func buildMetadataHeaderBytes(metadataSize uint32, version uint32, headerSize uint32, method types.EncryptionMethod) []byte {
	b := make([]byte, types.MetadataHeaderSize)
	binary.LittleEndian.PutUint32(b[0:4], metadataSize)
	binary.LittleEndian.PutUint32(b[4:8], version)
	binary.LittleEndian.PutUint32(b[8:12], headerSize)
	binary.LittleEndian.PutUint32(b[12:16], metadataSize)
	binary.LittleEndian.PutUint16(b[36:38], uint16(method))
	binary.LittleEndian.PutUint16(b[38:40], uint16(method))
	return b
}

func TestParseMetadataHeader(t *testing.T) {
	data := buildMetadataHeaderBytes(512, 2, 48, types.EncryptionMethodAES128CBC)

	mh, err := ParseMetadataHeader(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(512), mh.MetadataSize)
	assert.Equal(t, types.EncryptionMethodAES128CBC, mh.EncryptionMethod)
}

func TestParseMetadataHeaderSizeCopyMismatch(t *testing.T) {
	data := buildMetadataHeaderBytes(512, 2, 48, types.EncryptionMethodAES128CBC)
	types.PutUint32LE(data[12:16], 999)

	_, err := ParseMetadataHeader(data)
	require.Error(t, err)
	var fmtErr *errs.FormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, errs.Inconsistent, fmtErr.Kind)
}

func TestParseMetadataHeaderExceedsCeiling(t *testing.T) {
	size := uint32(types.MaxFVEMetadataSize + 1)
	data := buildMetadataHeaderBytes(size, 2, 48, types.EncryptionMethodAES128CBC)

	_, err := ParseMetadataHeader(data)
	require.Error(t, err)
	var fmtErr *errs.FormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, errs.SizeOutOfBounds, fmtErr.Kind)
}

func TestValidateMirrorMatch(t *testing.T) {
	bh := &types.BlockHeader{FirstMetadataOffset: 1, SecondMetadataOffset: 2, ThirdMetadataOffset: 3}
	err := ValidateMirror(bh, [3]uint64{1, 2, 3})
	assert.NoError(t, err)
}

func TestValidateMirrorMismatch(t *testing.T) {
	bh := &types.BlockHeader{FirstMetadataOffset: 1, SecondMetadataOffset: 2, ThirdMetadataOffset: 3}
	err := ValidateMirror(bh, [3]uint64{1, 2, 4})
	require.Error(t, err)
	var fmtErr *errs.FormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, errs.MirrorMismatch, fmtErr.Kind)
}
