package interfaces

import "github.com/deploymenttheory/go-bde/internal/types"

// MetadataBlockReader exposes one of a volume's three redundant FVE
// metadata blocks: its block header, metadata header, and classified entry
// stream (spec.md §3, §4.2, §4.4).
type MetadataBlockReader interface {
	BlockHeader() *types.BlockHeader
	MetadataHeader() *types.MetadataHeader
	Entries() []types.MetadataEntry
}
