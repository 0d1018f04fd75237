package header

import (
	"fmt"

	"github.com/deploymenttheory/go-bde/internal/errs"
	"github.com/deploymenttheory/go-bde/internal/types"
)

// ntfsVolumeHeaderSize is the minimum length of the embedded NTFS boot
// sector this package reads volume_size out of: the BIOS Parameter Block
// runs through its total_sectors field at offset 0x28.
const ntfsVolumeHeaderSize = 0x30

// ParseNTFSVolumeSize extracts the volume's true size in bytes from the
// decrypted, unencrypted NTFS boot sector (spec.md §3's volume_size field,
// finalized only after unlock; spec.md §4.10's "reads the unencrypted
// volume header"). The BDE driver never stores volume_size in its own
// on-disk structures — it is read out of the NTFS BPB's total_sectors
// field (8 bytes LE at offset 0x28) and multiplied by the sector size,
// exactly as original_source/libbde/libbde_io_handle.c's
// libbde_io_handle_read_unencrypted_volume_header does via
// libbde_ntfs_volume_header_read_data.
func ParseNTFSVolumeSize(sector []byte, bytesPerSector uint16) (uint64, error) {
	if len(sector) < ntfsVolumeHeaderSize {
		return 0, &errs.FormatError{Kind: errs.SizeOutOfBounds, Field: "ntfs_volume_header",
			Err: fmt.Errorf("need at least %d bytes, got %d", ntfsVolumeHeaderSize, len(sector))}
	}
	totalSectors := types.ReadUint64LE(sector[0x28:0x30])
	if totalSectors == 0 {
		return 0, &errs.FormatError{Kind: errs.BadGeometry, Field: "ntfs_volume_header.total_sectors",
			Err: fmt.Errorf("total sector count is zero")}
	}
	return totalSectors * uint64(bytesPerSector), nil
}
