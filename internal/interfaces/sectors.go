package interfaces

// SectorKind classifies how a given absolute sector on the volume must be
// read: verbatim, substituted from the relocated-header region, zeroed, or
// decrypted (spec.md §4, §6, §9).
type SectorKind int

const (
	SectorPlain SectorKind = iota
	SectorRelocatedHeader
	SectorPlainPatched
	SectorZeroedMetadata
	SectorEncrypted
)

// SectorPlan is the per-sector read plan a sector mapper produces for one
// absolute sector index: which backing range of bytes to read (or
// synthesize), and whether the result still needs decrypting.
type SectorPlan struct {
	Kind SectorKind
	// SourceOffset is the backing-store byte offset to read SourceLength
	// bytes from, meaningful for every Kind except SectorZeroedMetadata.
	SourceOffset int64
	SourceLength int
}

// SectorMapper resolves an absolute sector index on an encrypted volume
// into a SectorPlan, given the volume's non-uniform layout: the leading
// sectors holding the unencrypted volume header, the metadata regions that
// read as zero, and the header sectors relocated elsewhere on first unlock
// (spec.md §4, §9).
type SectorMapper interface {
	Plan(sectorIndex uint64) SectorPlan
	SectorSize() int
}
