// Package interfaces collects the small, single-purpose contracts each BDE
// component is built against, following the teacher's one-interface-per-
// concern layout (internal/interfaces/*.go).
package interfaces

import "io"

// ByteStream is the byte-I/O abstraction the core consumes from its
// caller — a file, a block device, or a carved-out range of either.
// Implementing it is explicitly out of scope for this library (spec.md §1);
// internal/device supplies a default os.File-backed implementation.
type ByteStream interface {
	io.ReaderAt
	io.Closer
	// Size returns the total addressable length of the backing store.
	Size() (int64, error)
}
