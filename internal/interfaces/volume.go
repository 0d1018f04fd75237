package interfaces

import "io"

// Volume is the public, read-only, random-access view of an unlocked BDE
// volume: a cancellable, concurrency-safe byte stream over the decrypted
// plaintext (spec.md §1, §7, §9).
type Volume interface {
	io.ReaderAt
	io.Closer
	Size() int64
}
