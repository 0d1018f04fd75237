package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"

	"github.com/deploymenttheory/go-bde/internal/errs"
)

// ccmNonceSize and ccmTagSize are fixed by the on-disk format: every BDE
// AesCcmEncryptedKey carries a 12-byte nonce (8-byte nonce time plus 4-byte
// counter) and a 16-byte MAC (spec.md §3), unlike the Matter profile this
// code is adapted from, which uses a 13-byte nonce. No associated data is
// authenticated; BDE's CCM use is key-wrap only.
const (
	ccmNonceSize = 12
	ccmTagSize   = 16
	aesBlockSize = 16
)

// ccmLenSize follows NIST 800-38C: L = 15 - nonceSize.
const ccmLenSize = 15 - ccmNonceSize

// ccmCipher is an AES-CCM instance fixed to BDE's 12-byte nonce, 16-byte
// tag convention, adapted from the pack's Matter AES-CCM reference
// (other_examples/f7739cf3_backkem-matter__pkg-crypto-aesccm.go.go): BDE
// keys are 16 or 32 bytes (AES-128 or AES-256), so key size is not fixed
// the way the Matter profile fixes it to 16.
type ccmCipher struct {
	block cipher.Block
}

func newCCMCipher(key []byte) (*ccmCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &errs.CryptoError{Err: fmt.Errorf("aes-ccm: %w", err)}
	}
	return &ccmCipher{block: block}, nil
}

// Open decrypts and authenticates a BDE AES-CCM blob (ciphertext with a
// trailing 16-byte MAC) under key and the 12-byte nonce derived from
// AesCcmEncryptedKey.Nonce.
func Open(key []byte, nonce [12]byte, ciphertext []byte) ([]byte, error) {
	c, err := newCCMCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < ccmTagSize {
		return nil, &errs.CryptoError{Err: fmt.Errorf("aes-ccm: ciphertext too short (%d bytes)", len(ciphertext))}
	}

	encryptedData := ciphertext[:len(ciphertext)-ccmTagSize]
	encryptedTag := ciphertext[len(ciphertext)-ccmTagSize:]

	s0 := c.generateS0(nonce[:])
	receivedTag := make([]byte, ccmTagSize)
	for i := range receivedTag {
		receivedTag[i] = encryptedTag[i] ^ s0[i]
	}

	plaintext := make([]byte, len(encryptedData))
	c.ctr(nonce[:], plaintext, encryptedData)

	expectedTag := c.computeTag(nonce[:], plaintext)
	if subtle.ConstantTimeCompare(receivedTag, expectedTag) != 1 {
		return nil, &errs.CryptoError{Err: fmt.Errorf("aes-ccm: authentication failed")}
	}
	return plaintext, nil
}

// Seal is Open's inverse, used by test fixtures that build synthetic
// wrapped-key blobs.
func Seal(key []byte, nonce [12]byte, plaintext []byte) ([]byte, error) {
	c, err := newCCMCipher(key)
	if err != nil {
		return nil, err
	}
	tag := c.computeTag(nonce[:], plaintext)

	out := make([]byte, len(plaintext)+ccmTagSize)
	s0 := c.generateS0(nonce[:])
	for i := 0; i < ccmTagSize; i++ {
		out[len(plaintext)+i] = tag[i] ^ s0[i]
	}
	c.ctr(nonce[:], out[:len(plaintext)], plaintext)
	return out, nil
}

func (c *ccmCipher) computeTag(nonce, plaintext []byte) []byte {
	var b0 [aesBlockSize]byte
	flags := byte((ccmTagSize-2)/2) << 3
	flags |= byte(ccmLenSize - 1)
	b0[0] = flags
	copy(b0[1:1+ccmNonceSize], nonce)
	putLength(b0[1+ccmNonceSize:], len(plaintext))

	mac := make([]byte, aesBlockSize)
	c.block.Encrypt(mac, b0[:])

	remaining := plaintext
	for len(remaining) > 0 {
		var block [aesBlockSize]byte
		n := copy(block[:], remaining)
		remaining = remaining[n:]
		for i := 0; i < aesBlockSize; i++ {
			mac[i] ^= block[i]
		}
		c.block.Encrypt(mac, mac)
	}
	return mac[:ccmTagSize]
}

func (c *ccmCipher) generateS0(nonce []byte) []byte {
	var a0 [aesBlockSize]byte
	a0[0] = byte(ccmLenSize - 1)
	copy(a0[1:1+ccmNonceSize], nonce)
	s0 := make([]byte, aesBlockSize)
	c.block.Encrypt(s0, a0[:])
	return s0
}

func (c *ccmCipher) ctr(nonce []byte, dst, src []byte) {
	var ctr [aesBlockSize]byte
	ctr[0] = byte(ccmLenSize - 1)
	copy(ctr[1:1+ccmNonceSize], nonce)
	ctr[aesBlockSize-1] = 1

	var keystream [aesBlockSize]byte
	for i := 0; i < len(src); i += aesBlockSize {
		c.block.Encrypt(keystream[:], ctr[:])
		end := i + aesBlockSize
		if end > len(src) {
			end = len(src)
		}
		for j := i; j < end; j++ {
			dst[j] = src[j] ^ keystream[j-i]
		}
		incrementCounter(ctr[aesBlockSize-ccmLenSize:])
	}
}

func putLength(dst []byte, length int) {
	for i := ccmLenSize - 1; i >= 0; i-- {
		dst[i] = byte(length)
		length >>= 8
	}
}

func incrementCounter(ctr []byte) {
	for i := len(ctr) - 1; i >= 0; i-- {
		ctr[i]++
		if ctr[i] != 0 {
			break
		}
	}
}
