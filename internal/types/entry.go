package types

// EntryHeaderSize is the fixed 8-byte header every MetadataEntry begins
// with: size(2) + entry_type(2) + value_type(2) + version(2).
const EntryHeaderSize = 8

// EntryVersion1 and EntryVersion3 are the only version tags a MetadataEntry
// may legally carry (spec.md §3).
const (
	EntryVersion1 uint16 = 1
	EntryVersion3 uint16 = 3
)

// MetadataEntry is a single tagged record from a FVE entry stream
// (spec.md §3, §4.3). ValueData is an owned copy of the payload so that
// composite property objects can walk nested entry streams after the
// parent buffer is released (spec.md §9).
type MetadataEntry struct {
	Size      uint16
	EntryType EntryType
	ValueType ValueType
	Version   uint16
	ValueData []byte
}
