package sectors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deploymenttheory/go-bde/internal/interfaces"
	"github.com/deploymenttheory/go-bde/internal/types"
)

func vistaHeader() (*types.VolumeHeader, *types.BlockHeader) {
	vh := &types.VolumeHeader{
		BytesPerSector:       512,
		FirstMetadataOffset:  0x4000,
		SecondMetadataOffset: 0x1000000,
		ThirdMetadataOffset:  0x2000000,
	}
	bh := &types.BlockHeader{Version: types.BlockHeaderVersion1}
	return vh, bh
}

func win7Header() (*types.VolumeHeader, *types.BlockHeader) {
	vh := &types.VolumeHeader{
		BytesPerSector:       512,
		FirstMetadataOffset:  0x4000,
		SecondMetadataOffset: 0x1000000,
		ThirdMetadataOffset:  0x2000000,
	}
	bh := &types.BlockHeader{
		Version:                     types.BlockHeaderVersion2,
		VolumeHeaderOffset:          0x8000000,
		NumberOfVolumeHeaderSectors: 16,
		EncryptedVolumeSize:         0x10000000,
	}
	return vh, bh
}

func TestMapperVistaPatchesOnlySectorZero(t *testing.T) {
	vh, bh := vistaHeader()
	m := NewMapper(vh, bh)

	plan0 := m.Plan(0)
	assert.Equal(t, interfaces.SectorPlainPatched, plan0.Kind)
	assert.Equal(t, int64(0), plan0.SourceOffset)

	plan1 := m.Plan(1)
	assert.NotEqual(t, interfaces.SectorPlainPatched, plan1.Kind)
	assert.Equal(t, interfaces.SectorPlain, plan1.Kind, "Vista sectors past the boot sector fall through to its leading-plaintext region")
	assert.Equal(t, int64(512), plan1.SourceOffset)
}

func TestMapperVistaLeadingPlaintextBeyondSectorZero(t *testing.T) {
	vh, bh := vistaHeader()
	m := NewMapper(vh, bh)

	for _, idx := range []uint64{1, 2, 15} {
		plan := m.Plan(idx)
		assert.Equal(t, interfaces.SectorPlain, plan.Kind)
	}

	plan := m.Plan(16)
	assert.Equal(t, interfaces.SectorEncrypted, plan.Kind)
}

func TestMapperWin7MetadataRegionWinsOverRelocatedHeader(t *testing.T) {
	// A contrived header where the first metadata offset falls inside the
	// logical range covered by the relocated header sectors, to pin down
	// which check wins when the two regions overlap.
	vh := &types.VolumeHeader{
		BytesPerSector:       512,
		FirstMetadataOffset:  0x400, // logical sector 2, inside [0, 16*512)
		SecondMetadataOffset: 0x1000000,
		ThirdMetadataOffset:  0x2000000,
	}
	bh := &types.BlockHeader{
		Version:                     types.BlockHeaderVersion2,
		VolumeHeaderOffset:          0x8000000,
		NumberOfVolumeHeaderSectors: 16,
	}
	m := NewMapper(vh, bh)

	plan := m.Plan(2)
	assert.Equal(t, interfaces.SectorZeroedMetadata, plan.Kind,
		"spec.md §4.8 checks metadata-zero regions before relocated-header sectors")
}

func TestMapperVistaMetadataRegionsReadAsZero(t *testing.T) {
	vh, bh := vistaHeader()
	m := NewMapper(vh, bh)

	sectorIndex := vh.FirstMetadataOffset / 512
	plan := m.Plan(sectorIndex)
	assert.Equal(t, interfaces.SectorZeroedMetadata, plan.Kind)
}

func TestMapperWin7RelocatesHeaderSectors(t *testing.T) {
	vh, bh := win7Header()
	m := NewMapper(vh, bh)

	plan := m.Plan(0)
	assert.Equal(t, interfaces.SectorRelocatedHeader, plan.Kind)
	assert.Equal(t, int64(bh.VolumeHeaderOffset), plan.SourceOffset)

	plan2 := m.Plan(1)
	assert.Equal(t, interfaces.SectorRelocatedHeader, plan2.Kind)
	assert.Equal(t, int64(bh.VolumeHeaderOffset)+512, plan2.SourceOffset)

	plan16 := m.Plan(16)
	assert.NotEqual(t, interfaces.SectorRelocatedHeader, plan16.Kind)
}

func TestMapperWin7MetadataRegionsReadAsZero(t *testing.T) {
	vh, bh := win7Header()
	m := NewMapper(vh, bh)

	sectorIndex := vh.SecondMetadataOffset / 512
	plan := m.Plan(sectorIndex)
	assert.Equal(t, interfaces.SectorZeroedMetadata, plan.Kind)
}

func TestMapperWin7PlaintextTailAtEncryptedVolumeSize(t *testing.T) {
	vh, bh := win7Header()
	m := NewMapper(vh, bh)

	tailSector := bh.EncryptedVolumeSize / 512
	plan := m.Plan(tailSector)
	assert.Equal(t, interfaces.SectorPlain, plan.Kind)

	justBefore := tailSector - 1
	before := m.Plan(justBefore)
	assert.Equal(t, interfaces.SectorEncrypted, before.Kind)
}

func TestMapperOrdinaryEncryptedSector(t *testing.T) {
	vh, bh := win7Header()
	m := NewMapper(vh, bh)

	plan := m.Plan(1000)
	assert.Equal(t, interfaces.SectorEncrypted, plan.Kind)
	assert.Equal(t, int64(1000*512), plan.SourceOffset)
	assert.Equal(t, 512, plan.SourceLength)
}

func TestMapperSectorSize(t *testing.T) {
	vh, bh := win7Header()
	m := NewMapper(vh, bh)
	assert.Equal(t, 512, m.SectorSize())
}
