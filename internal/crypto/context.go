package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/deploymenttheory/go-bde/internal/errs"
	"github.com/deploymenttheory/go-bde/internal/types"
)

// EncryptionContext dispatches sector encryption and decryption across
// BDE's four cipher modes (none, AES-CBC, AES-CBC+diffuser, AES-XTS;
// spec.md §4.7), holding the unwrapped FVEK (and, for diffuser/XTS modes,
// the paired tweak key the on-disk FVEK blob carries alongside it). It is
// the sector-level analogue of the teacher's apfs/pkg/crypto/encryption.go
// AES-XTS context.
type EncryptionContext struct {
	Method   types.EncryptionMethod
	FVEKKey  []byte // AES data key (CBC key, or XTS data-unit key)
	TweakKey []byte // diffuser sector-key-stream key, or XTS tweak key; nil for None/plain CBC
}

// NewEncryptionContext validates that fvekKey/tweakKey are sized correctly
// for method and returns a ready EncryptionContext.
func NewEncryptionContext(method types.EncryptionMethod, fvekKey, tweakKey []byte) (*EncryptionContext, error) {
	if method == types.EncryptionMethodNone {
		return &EncryptionContext{Method: method}, nil
	}
	layout, ok := layoutFor(method)
	if !ok {
		return nil, &errs.UnlockError{Kind: errs.UnsupportedMethod,
			Err: fmt.Errorf("unsupported encryption method %s", method)}
	}
	if len(fvekKey) != layout.keyLen {
		return nil, &errs.CryptoError{Err: fmt.Errorf("fvek key length %d, want %d for %s", len(fvekKey), layout.keyLen, method)}
	}
	if layout.tweakLen > 0 && len(tweakKey) != layout.tweakLen {
		return nil, &errs.CryptoError{Err: fmt.Errorf("tweak key length %d, want %d for %s", len(tweakKey), layout.tweakLen, method)}
	}
	return &EncryptionContext{Method: method, FVEKKey: fvekKey, TweakKey: tweakKey}, nil
}

// DecryptSector decrypts one on-disk sector's ciphertext, dispatching on
// the context's Method. sectorByteOffset is the sector's absolute byte
// offset on the encrypted volume — the "block key" for CBC-family modes;
// XTS modes derive their own per-sector tweak index by dividing it by the
// sector length (spec.md §4.7, §4.8).
func (c *EncryptionContext) DecryptSector(sectorByteOffset uint64, ciphertext []byte) ([]byte, error) {
	switch {
	case c.Method == types.EncryptionMethodNone:
		out := make([]byte, len(ciphertext))
		copy(out, ciphertext)
		return out, nil

	case c.Method.IsXTS():
		return c.xtsCrypt(sectorByteOffset, ciphertext, false)

	case c.Method.HasDiffuser():
		return c.cbcDiffuserDecrypt(sectorByteOffset, ciphertext)

	case c.Method.IsCBC():
		return c.cbcDecrypt(sectorByteOffset, ciphertext)

	default:
		return nil, &errs.UnlockError{Kind: errs.UnsupportedMethod,
			Err: fmt.Errorf("unsupported encryption method %s", c.Method)}
	}
}

// EncryptSector is DecryptSector's inverse, used by test fixtures that
// build synthetic encrypted sector images.
func (c *EncryptionContext) EncryptSector(sectorByteOffset uint64, plaintext []byte) ([]byte, error) {
	switch {
	case c.Method == types.EncryptionMethodNone:
		out := make([]byte, len(plaintext))
		copy(out, plaintext)
		return out, nil

	case c.Method.IsXTS():
		return c.xtsCrypt(sectorByteOffset, plaintext, true)

	case c.Method.HasDiffuser():
		return c.cbcDiffuserEncrypt(sectorByteOffset, plaintext)

	case c.Method.IsCBC():
		return c.cbcEncrypt(sectorByteOffset, plaintext)

	default:
		return nil, &errs.UnlockError{Kind: errs.UnsupportedMethod,
			Err: fmt.Errorf("unsupported encryption method %s", c.Method)}
	}
}

// sectorIV derives the per-sector AES-CBC initialization vector by
// AES-ECB-encrypting the little-endian block key under key (spec.md
// §4.7's "iv = AES-ECB-encrypt(FVEK, block_key_as_128-bit_LE)").
func sectorIV(key []byte, blockKey uint64) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	var plain [16]byte
	for i := 0; i < 8; i++ {
		plain[i] = byte(blockKey >> (8 * uint(i)))
	}
	iv := make([]byte, 16)
	block.Encrypt(iv, plain[:])
	return iv, nil
}

func (c *EncryptionContext) cbcDecrypt(blockKey uint64, ciphertext []byte) ([]byte, error) {
	iv, err := sectorIV(c.FVEKKey, blockKey)
	if err != nil {
		return nil, &errs.CryptoError{Err: err}
	}
	block, err := aes.NewCipher(c.FVEKKey)
	if err != nil {
		return nil, &errs.CryptoError{Err: err}
	}
	if len(ciphertext)%aesBlockSize != 0 {
		return nil, &errs.CryptoError{Err: fmt.Errorf("ciphertext length %d not a multiple of %d", len(ciphertext), aesBlockSize)}
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return out, nil
}

func (c *EncryptionContext) cbcEncrypt(blockKey uint64, plaintext []byte) ([]byte, error) {
	iv, err := sectorIV(c.FVEKKey, blockKey)
	if err != nil {
		return nil, &errs.CryptoError{Err: err}
	}
	block, err := aes.NewCipher(c.FVEKKey)
	if err != nil {
		return nil, &errs.CryptoError{Err: err}
	}
	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plaintext)
	return out, nil
}

// cbcDiffuserDecrypt follows spec.md §4.7's decrypt order exactly:
// AES-CBC-decrypt, XOR the AES-ECB sector-key stream, diffuser B^-1, then
// diffuser A^-1.
func (c *EncryptionContext) cbcDiffuserDecrypt(blockKey uint64, ciphertext []byte) ([]byte, error) {
	plain, err := c.cbcDecrypt(blockKey, ciphertext)
	if err != nil {
		return nil, err
	}
	stream, err := sectorKeyStream(c.TweakKey, blockKey, len(plain))
	if err != nil {
		return nil, &errs.CryptoError{Err: err}
	}
	for i := range plain {
		plain[i] ^= stream[i]
	}
	diffuserBInverse(plain)
	diffuserAInverse(plain)
	return plain, nil
}

// cbcDiffuserEncrypt runs the mirrored order: diffuser A, diffuser B, XOR
// the sector-key stream, then AES-CBC-encrypt.
func (c *EncryptionContext) cbcDiffuserEncrypt(blockKey uint64, plaintext []byte) ([]byte, error) {
	buf := make([]byte, len(plaintext))
	copy(buf, plaintext)

	diffuserAForward(buf)
	diffuserBForward(buf)

	stream, err := sectorKeyStream(c.TweakKey, blockKey, len(buf))
	if err != nil {
		return nil, &errs.CryptoError{Err: err}
	}
	for i := range buf {
		buf[i] ^= stream[i]
	}
	return c.cbcEncrypt(blockKey, buf)
}

// xtsCrypt implements AES-XTS keyed by FVEKKey (data) and TweakKey
// (tweak), with the tweak derived from the sector index
// (sectorByteOffset / sector size), per spec.md §4.8.
func (c *EncryptionContext) xtsCrypt(sectorByteOffset uint64, data []byte, encrypt bool) ([]byte, error) {
	dataBlock, err := aes.NewCipher(c.FVEKKey)
	if err != nil {
		return nil, &errs.CryptoError{Err: err}
	}
	tweakBlock, err := aes.NewCipher(c.TweakKey)
	if err != nil {
		return nil, &errs.CryptoError{Err: err}
	}
	if len(data) == 0 || len(data)%aesBlockSize != 0 {
		return nil, &errs.CryptoError{Err: fmt.Errorf("xts data length %d not a multiple of %d", len(data), aesBlockSize)}
	}

	sectorIndex := sectorByteOffset / uint64(len(data))
	var tweakPlain [16]byte
	for i := 0; i < 8; i++ {
		tweakPlain[i] = byte(sectorIndex >> (8 * uint(i)))
	}
	var tweak [16]byte
	tweakBlock.Encrypt(tweak[:], tweakPlain[:])

	out := make([]byte, len(data))
	var block [16]byte
	for off := 0; off < len(data); off += aesBlockSize {
		for i := 0; i < aesBlockSize; i++ {
			block[i] = data[off+i] ^ tweak[i]
		}
		if encrypt {
			dataBlock.Encrypt(block[:], block[:])
		} else {
			dataBlock.Decrypt(block[:], block[:])
		}
		for i := 0; i < aesBlockSize; i++ {
			out[off+i] = block[i] ^ tweak[i]
		}
		gfMulX(&tweak)
	}
	return out, nil
}

// gfMulX multiplies tweak by the primitive element x in GF(2^128), the
// standard XTS tweak update (IEEE P1619).
func gfMulX(tweak *[16]byte) {
	var carry byte
	for i := 0; i < 16; i++ {
		b := tweak[i]
		tweak[i] = (b << 1) | carry
		carry = b >> 7
	}
	if carry != 0 {
		tweak[0] ^= 0x87
	}
}
