package interfaces

// CryptoProvider is the cryptographic primitives contract the key-unwrap
// pipeline and the sector-level encryption context consume: AES-ECB,
// AES-CBC, AES-CCM, AES-XTS, SHA-256, and the Elephant diffuser. Providing
// one is explicitly out of scope for this library (spec.md §1). No type in
// this module implements it: internal/crypto calls crypto/aes,
// crypto/cipher and crypto/sha256 directly.
type CryptoProvider interface {
	// CCMOpen authenticates and decrypts ciphertext (which includes a
	// trailing 16-byte MAC) under key and nonce, returning the plaintext.
	CCMOpen(key, nonce, ciphertext []byte) ([]byte, error)

	// ECBEncryptBlock encrypts a single 16-byte block under key with no
	// chaining, used to derive per-sector IVs and diffuser key streams.
	ECBEncryptBlock(key, block []byte) ([]byte, error)

	// CBCDecrypt decrypts ciphertext under key and iv with no padding
	// (BDE sectors are always a whole number of AES blocks).
	CBCDecrypt(key, iv, ciphertext []byte) ([]byte, error)

	// CBCEncrypt is CBCDecrypt's inverse, used by the cipher round-trip
	// test property (spec.md §8).
	CBCEncrypt(key, iv, plaintext []byte) ([]byte, error)

	// XTSDecryptSector decrypts one sector under a data key and tweak key
	// with the given sector index as the XTS tweak.
	XTSDecryptSector(dataKey, tweakKey []byte, sectorIndex uint64, ciphertext []byte) ([]byte, error)

	// XTSEncryptSector is XTSDecryptSector's inverse.
	XTSEncryptSector(dataKey, tweakKey []byte, sectorIndex uint64, plaintext []byte) ([]byte, error)

	// SHA256 returns the SHA-256 digest of data.
	SHA256(data []byte) [32]byte
}
