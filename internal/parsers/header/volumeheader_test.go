package header

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-bde/internal/errs"
	"github.com/deploymenttheory/go-bde/internal/types"
)

func buildVistaHeaderBytes(first, second, third uint64) []byte {
	b := make([]byte, 512)
	copy(b[3:11], types.Signature[:])
	binary.LittleEndian.PutUint16(b[11:13], 512)
	binary.LittleEndian.PutUint64(b[0x1A0:0x1A8], first)
	binary.LittleEndian.PutUint64(b[0x1A8:0x1B0], second)
	binary.LittleEndian.PutUint64(b[0x1B0:0x1B8], third)
	return b
}

func buildWin7HeaderBytes(guid types.GUID, first, second, third uint64) []byte {
	b := make([]byte, 512)
	b[0] = 0xEB
	b[2] = 0x90
	copy(b[3:11], types.Signature[:])
	binary.LittleEndian.PutUint16(b[11:13], 512)
	copy(b[0x30:0x40], guid[:])
	binary.LittleEndian.PutUint64(b[0x1B0:0x1B8], first)
	binary.LittleEndian.PutUint64(b[0x1B8:0x1C0], second)
	binary.LittleEndian.PutUint64(b[0x1C0:0x1C8], third)
	return b
}

func TestNewVolumeHeaderReaderVista(t *testing.T) {
	data := buildVistaHeaderBytes(0x4000, 0x1000000, 0x2000000)

	r, err := NewVolumeHeaderReader(data)
	require.NoError(t, err)
	assert.Equal(t, types.VolumeVersionVista, r.Version())
	assert.Equal(t, uint16(512), r.BytesPerSector())
	assert.Equal(t, [3]uint64{0x4000, 0x1000000, 0x2000000}, r.MetadataOffsets())
}

func TestNewVolumeHeaderReaderWin7(t *testing.T) {
	data := buildWin7HeaderBytes(types.Win7Identifier, 0x4000, 0x1000000, 0x2000000)

	r, err := NewVolumeHeaderReader(data)
	require.NoError(t, err)
	assert.Equal(t, types.VolumeVersionWin7, r.Version())
}

func TestNewVolumeHeaderReaderToGo(t *testing.T) {
	data := buildWin7HeaderBytes(types.ToGoIdentifier, 0x4000, 0x1000000, 0x2000000)

	r, err := NewVolumeHeaderReader(data)
	require.NoError(t, err)
	assert.Equal(t, types.VolumeVersionToGo, r.Version())
}

func TestNewVolumeHeaderReaderTooShort(t *testing.T) {
	_, err := NewVolumeHeaderReader(make([]byte, 100))
	require.Error(t, err)
	var fmtErr *errs.FormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, errs.SizeOutOfBounds, fmtErr.Kind)
}

func TestNewVolumeHeaderReaderBadSignature(t *testing.T) {
	data := buildVistaHeaderBytes(0x4000, 0x1000000, 0x2000000)
	copy(data[3:11], "WRONGSIG")

	_, err := NewVolumeHeaderReader(data)
	require.Error(t, err)
	var fmtErr *errs.FormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, errs.BadSignature, fmtErr.Kind)
}

func TestNewVolumeHeaderReaderBadSectorSize(t *testing.T) {
	data := buildVistaHeaderBytes(0x4000, 0x1000000, 0x2000000)
	binary.LittleEndian.PutUint16(data[11:13], 777)

	_, err := NewVolumeHeaderReader(data)
	require.Error(t, err)
	var fmtErr *errs.FormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, errs.BadGeometry, fmtErr.Kind)
}

func TestNewVolumeHeaderReaderZeroOffsetRejected(t *testing.T) {
	data := buildVistaHeaderBytes(0, 0x1000000, 0x2000000)

	_, err := NewVolumeHeaderReader(data)
	require.Error(t, err)
	var fmtErr *errs.FormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, errs.BadGeometry, fmtErr.Kind)
}

func TestNewVolumeHeaderReaderDuplicateOffsetsRejected(t *testing.T) {
	data := buildVistaHeaderBytes(0x4000, 0x4000, 0x2000000)

	_, err := NewVolumeHeaderReader(data)
	require.Error(t, err)
	var fmtErr *errs.FormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, errs.BadGeometry, fmtErr.Kind)
}

func TestNewVolumeHeaderReaderMisalignedOffsetRejected(t *testing.T) {
	data := buildVistaHeaderBytes(0x4001, 0x1000000, 0x2000000)

	_, err := NewVolumeHeaderReader(data)
	require.Error(t, err)
	var fmtErr *errs.FormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, errs.BadGeometry, fmtErr.Kind)
}
