package crypto

import "crypto/aes"

// The Elephant diffuser (spec.md §4.7) is a keyless, reversible mixing
// pass over a sector's 32-bit little-endian words, applied on top of
// AES-CBC for the AES-*-CBC+diffuser methods. It has no third-party
// equivalent in the retrieval pack; the rotation constants and loop shape
// below follow spec.md's pseudocode directly, which in turn traces to
// original_source/libbde's diffuser implementation.
var rotA = [4]uint{9, 0, 13, 0}
var rotB = [4]uint{0, 10, 0, 25}

func words(data []byte) []uint32 {
	n := len(data) / 4
	w := make([]uint32, n)
	for i := 0; i < n; i++ {
		w[i] = uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
	}
	return w
}

func putWords(data []byte, w []uint32) {
	for i, v := range w {
		data[i*4] = byte(v)
		data[i*4+1] = byte(v >> 8)
		data[i*4+2] = byte(v >> 16)
		data[i*4+3] = byte(v >> 24)
	}
}

func rotl32(x uint32, n uint) uint32 {
	if n == 0 {
		return x
	}
	return x<<n | x>>(32-n)
}

// floorMod returns i mod n for possibly-negative i, always in [0, n).
func floorMod(i, n int) int {
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}

// diffuserAForward runs the forward A pass: for i from 5n down to 1,
// d[i mod n] += d[(i-2) mod n] XOR ROL(d[(i-5) mod n], rotA[i mod 4])
// (spec.md §4.7).
func diffuserAForward(data []byte) {
	w := words(data)
	n := len(w)
	for i := 5 * n; i >= 1; i-- {
		idx := i % n
		w[idx] += w[floorMod(i-2, n)] ^ rotl32(w[floorMod(i-5, n)], rotA[i%4])
	}
	putWords(data, w)
}

// diffuserAInverse undoes diffuserAForward, running the same index
// sequence in the opposite direction with subtraction in place of
// addition (spec.md §4.7: "Inverse uses subtraction in the opposite loop
// direction").
func diffuserAInverse(data []byte) {
	w := words(data)
	n := len(w)
	for i := 1; i <= 5*n; i++ {
		idx := i % n
		w[idx] -= w[floorMod(i-2, n)] ^ rotl32(w[floorMod(i-5, n)], rotA[i%4])
	}
	putWords(data, w)
}

// diffuserBForward mirrors diffuserAForward with rotB and the (i+2)/(i+5)
// offsets spec.md §4.7 gives for diffuser B.
func diffuserBForward(data []byte) {
	w := words(data)
	n := len(w)
	for i := 5 * n; i >= 1; i-- {
		idx := i % n
		w[idx] += w[(i+2)%n] ^ rotl32(w[(i+5)%n], rotB[i%4])
	}
	putWords(data, w)
}

func diffuserBInverse(data []byte) {
	w := words(data)
	n := len(w)
	for i := 1; i <= 5*n; i++ {
		idx := i % n
		w[idx] -= w[(i+2)%n] ^ rotl32(w[(i+5)%n], rotB[i%4])
	}
	putWords(data, w)
}

// sectorKeyStream produces len(data)-worth of keystream bytes by
// AES-ECB-encrypting successive 16-byte little-endian counters under
// tweakKey, the counter for chunk c being blockKey+c (spec.md §4.7: "chunk
// c's 16 key bytes are AES-ECB-encrypt(tweak_key, LE128(block_key + c))").
func sectorKeyStream(tweakKey []byte, blockKey uint64, length int) ([]byte, error) {
	block, err := aes.NewCipher(tweakKey)
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	counter := blockKey
	var plain, enc [16]byte
	for off := 0; off < length; off += 16 {
		for i := 0; i < 8; i++ {
			plain[i] = byte(counter >> (8 * uint(i)))
		}
		for i := 8; i < 16; i++ {
			plain[i] = 0
		}
		block.Encrypt(enc[:], plain[:])
		copy(out[off:], enc[:])
		counter++
	}
	return out, nil
}
