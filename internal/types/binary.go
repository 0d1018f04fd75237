package types

import "encoding/binary"

// ReadUint16LE decodes a little-endian uint16 at the start of b.
func ReadUint16LE(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// ReadUint32LE decodes a little-endian uint32 at the start of b.
func ReadUint32LE(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// ReadUint64LE decodes a little-endian uint64 at the start of b.
func ReadUint64LE(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

// ReadGUID copies a 16-byte GUID out of b.
func ReadGUID(b []byte) GUID {
	var g GUID
	copy(g[:], b[:16])
	return g
}

// PutUint64LE encodes v little-endian into b, which must be at least 8 bytes.
func PutUint64LE(b []byte, v uint64) {
	binary.LittleEndian.PutUint64(b, v)
}

// PutUint128LE encodes the 128-bit little-endian representation of v into b,
// which must be at least 16 bytes. The upper 64 bits are always zero; BDE
// only ever needs 128-bit LE encodings of 64-bit counters (sector offsets,
// block keys) zero-extended to a full AES block.
func PutUint128LE(b []byte, v uint64) {
	for i := range b[:16] {
		b[i] = 0
	}
	binary.LittleEndian.PutUint64(b[:8], v)
}
