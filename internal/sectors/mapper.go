// Package sectors implements the sector mapper (C10) and the cached
// random-access reader (C11) that sit between a decrypted EncryptionContext
// and the public Volume facade (spec.md §4, §6, §9).
package sectors

import (
	"github.com/deploymenttheory/go-bde/internal/interfaces"
	"github.com/deploymenttheory/go-bde/internal/types"
)

// vistaPlaintextSectors is the size of the leading plaintext region on a
// Vista volume in sectors (spec.md §4.8); Plan multiplies it by the
// volume's BytesPerSector, since that can vary.
const vistaPlaintextSectors = 16

// Mapper implements interfaces.SectorMapper for a single unlocked volume.
// Four regions read specially: the leading header sectors (relocated to
// VolumeHeaderOffset for Win7/ToGo, or read in place and patched in memory
// for Vista); the three FVE metadata regions, each MaxFVEMetadataSize bytes
// starting at one of the block header's three offsets, which read back as
// zero rather than ciphertext; Vista's leading plaintext sectors and any
// offset at or beyond the encrypted volume's tail, both plaintext; and
// everything else, an ordinary encrypted sector (spec.md §4.8, §6).
type Mapper struct {
	sectorSize          int
	isVista             bool
	headerSectors       uint64
	headerReloOffset    int64
	metadataOffsets     [3]uint64
	metadataSize        uint64
	encryptedVolumeSize uint64 // 0 means unbounded (no known tail)
}

// NewMapper builds a Mapper from a volume header and the block header of
// whichever FVE metadata block was selected as authoritative.
func NewMapper(vh *types.VolumeHeader, bh *types.BlockHeader) *Mapper {
	return &Mapper{
		sectorSize:          int(vh.BytesPerSector),
		isVista:             bh.Version == types.BlockHeaderVersion1,
		headerSectors:       uint64(bh.NumberOfVolumeHeaderSectors),
		headerReloOffset:    int64(bh.VolumeHeaderOffset),
		metadataOffsets:     vh.MetadataOffsets(),
		metadataSize:        uint64(types.MaxFVEMetadataSize),
		encryptedVolumeSize: bh.EncryptedVolumeSize,
	}
}

func (m *Mapper) SectorSize() int { return m.sectorSize }

// Plan resolves sectorIndex into a SectorPlan (spec.md §4.8's "non-uniform
// sector mapping"), checked in the order spec.md §4.8 states: metadata-zero
// regions first, then relocated/patched header sectors, Vista's leading
// plaintext sectors, the post-encryption plaintext tail, then an ordinary
// encrypted sector.
func (m *Mapper) Plan(sectorIndex uint64) interfaces.SectorPlan {
	byteOffset := sectorIndex * uint64(m.sectorSize)

	for _, off := range m.metadataOffsets {
		if byteOffset >= off && byteOffset < off+m.metadataSize {
			return interfaces.SectorPlan{Kind: interfaces.SectorZeroedMetadata, SourceLength: m.sectorSize}
		}
	}

	if m.isVista {
		// Vista never relocates its header sectors; they are read at their
		// true physical offset. Only the very first sector carries the
		// patched-in-memory signature and MFT-mirror fields (spec.md §4.8).
		if sectorIndex == 0 {
			return interfaces.SectorPlan{
				Kind:         interfaces.SectorPlainPatched,
				SourceOffset: int64(byteOffset),
				SourceLength: m.sectorSize,
			}
		}
	} else if m.headerSectors > 0 && sectorIndex < m.headerSectors {
		relocated := m.headerReloOffset + int64(sectorIndex)*int64(m.sectorSize)
		return interfaces.SectorPlan{
			Kind:         interfaces.SectorRelocatedHeader,
			SourceOffset: relocated,
			SourceLength: m.sectorSize,
		}
	}

	if m.isVista && byteOffset < vistaPlaintextSectors*uint64(m.sectorSize) {
		return interfaces.SectorPlan{
			Kind:         interfaces.SectorPlain,
			SourceOffset: int64(byteOffset),
			SourceLength: m.sectorSize,
		}
	}

	if m.encryptedVolumeSize > 0 && byteOffset >= m.encryptedVolumeSize {
		return interfaces.SectorPlan{
			Kind:         interfaces.SectorPlain,
			SourceOffset: int64(byteOffset),
			SourceLength: m.sectorSize,
		}
	}

	return interfaces.SectorPlan{
		Kind:         interfaces.SectorEncrypted,
		SourceOffset: int64(byteOffset),
		SourceLength: m.sectorSize,
	}
}
