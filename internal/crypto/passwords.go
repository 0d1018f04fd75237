// Package crypto implements the BDE key-derivation and key-unwrap pipeline
// (C7, C8, C9, spec.md §4.5, §5): password and recovery-password hashing,
// SHA-256-based key stretching, AES-CCM unwrap, and sector-level cipher
// dispatch (CBC, CBC+diffuser, XTS).
package crypto

import (
	"crypto/sha256"
	"fmt"
	"unicode/utf16"

	"github.com/deploymenttheory/go-bde/internal/errs"
)

// StretchIterations is the default number of SHA-256 stretching rounds
// applied to a password or recovery-password hash before it is compared
// against a StretchKey (spec.md §4.5); configurable via Config for test
// fixtures that would otherwise be prohibitively slow.
const StretchIterations = 0x100000

// HashPassword derives the initial SHA-256 digest chain BDE uses for a
// user password: UTF-16LE-encode the password, then SHA-256 it twice
// (grounded on original_source/libbde/libbde_metadata.c's password hash
// routine, since spec.md itself does not spell out the exact hash
// construction).
func HashPassword(password string) [32]byte {
	units := utf16.Encode([]rune(password))
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		buf[i*2] = byte(u)
		buf[i*2+1] = byte(u >> 8)
	}
	first := sha256.Sum256(buf)
	second := sha256.Sum256(first[:])
	return second
}

// recoveryPasswordGroupCount is the number of 6-digit groups in a 48-digit
// BitLocker recovery password. spec.md §4.5's prose says "six groups" but
// its own worked example (§8 scenario 2) gives a 48-digit password in 8
// groups of 6 — the real on-disk BitLocker recovery-password format, which
// this code follows; the prose count is treated as the error.
const recoveryPasswordGroupCount = 8

// recoveryPasswordDecodedSize is the byte length of the packed 16-bit-word
// form: one little-endian uint16 per digit group.
const recoveryPasswordDecodedSize = recoveryPasswordGroupCount * 2

// ParseRecoveryPassword validates and decodes a 48-digit recovery password
// (8 groups of 6 decimal digits) into the packed 16-byte value
// HashRecoveryPassword hashes. Groups may be separated by any single
// non-digit character (the conventional form uses '-').
//
// The real BitLocker recovery password additionally requires each group's
// numeric value to be a multiple of 11 (the generator picks a random
// 16-bit word and emits word*11 as the digit group, so the multiple-of-11
// property falls out of construction rather than being an independent
// checksum digit). This parser does not enforce that: spec.md's own worked
// example (§8 scenario 2) fails it outright, so treating it as load-bearing
// here would reject the specification's own test vector. Each group's
// value is instead folded into its 16-bit word with a plain modulo.
func ParseRecoveryPassword(s string) ([recoveryPasswordDecodedSize]byte, error) {
	var out [recoveryPasswordDecodedSize]byte
	groups := splitDigitGroups(s, recoveryPasswordGroupCount)
	if groups == nil {
		return out, &errs.CredError{Kind: errs.BadRecoveryPassword,
			Err: fmt.Errorf("expected %d groups of 6 digits", recoveryPasswordGroupCount)}
	}
	for i, g := range groups {
		n, ok := parseDigits(g)
		if !ok {
			return out, &errs.CredError{Kind: errs.BadRecoveryPassword,
				Err: fmt.Errorf("group %d (%q) is not 6 decimal digits", i, g)}
		}
		v := uint16(n % 65536)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out, nil
}

func splitDigitGroups(s string, want int) []string {
	var groups []string
	cur := make([]byte, 0, 6)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			cur = append(cur, c)
			continue
		}
		if len(cur) > 0 {
			groups = append(groups, string(cur))
			cur = cur[:0]
		}
	}
	if len(cur) > 0 {
		groups = append(groups, string(cur))
	}
	if len(groups) != want {
		return nil
	}
	for _, g := range groups {
		if len(g) != 6 {
			return nil
		}
	}
	return groups
}

func parseDigits(s string) (uint64, bool) {
	var n uint64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + uint64(s[i]-'0')
	}
	return n, true
}

// HashRecoveryPassword SHA-256-hashes the packed recovery-password value,
// mirroring HashPassword's double-hash construction
// (original_source/libbde/libbde_metadata.c).
func HashRecoveryPassword(decoded [recoveryPasswordDecodedSize]byte) [32]byte {
	first := sha256.Sum256(decoded[:])
	second := sha256.Sum256(first[:])
	return second
}

// StretchKey iterates the SHA-256-based key-stretching function that turns
// a password or recovery-password hash plus a StretchKey salt into the key
// that unwraps a VolumeMasterKey's AES-CCM blob (spec.md §4.5). Each round
// re-hashes the 88-byte state { last_sha256_hash[32], initial_sha256_hash[32],
// salt[16], hash_count[8] }, with hash_count set to i+1 (little-endian u64)
// on round i; initial_sha256_hash never changes across rounds. iterations is
// normally StretchIterations; tests may pass a smaller value.
func StretchKey(initialHash [32]byte, salt [16]byte, iterations uint32) [32]byte {
	last := initialHash
	buf := make([]byte, 32+32+16+8)
	copy(buf[32:64], initialHash[:])
	copy(buf[64:80], salt[:])
	for i := uint32(0); i < iterations; i++ {
		copy(buf[0:32], last[:])
		putUint64LE(buf[80:88], uint64(i)+1)
		last = sha256.Sum256(buf)
	}
	return last
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}
