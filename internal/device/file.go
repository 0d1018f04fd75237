// Package device implements the default os.File-backed ByteStream (spec.md
// §1's "implementing ByteStream is out of scope for callers supplying
// their own backing store") and the .BEK startup-key file reader
// (spec.md §6), grounded on the teacher's DMGDevice
// (internal/device/dmg.go).
package device

import (
	"fmt"
	"os"

	"github.com/deploymenttheory/go-bde/internal/errs"
)

// FileDevice is a ByteStream backed by an *os.File opened for reading.
type FileDevice struct {
	file *os.File
	size int64
}

// OpenFile opens path read-only and stats it for Size.
func OpenFile(path string) (*FileDevice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errs.IoError{Kind: errs.Backend, Err: fmt.Errorf("open %s: %w", path, err)}
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &errs.IoError{Kind: errs.Backend, Err: fmt.Errorf("stat %s: %w", path, err)}
	}
	return &FileDevice{file: f, size: stat.Size()}, nil
}

func (d *FileDevice) ReadAt(p []byte, off int64) (int, error) {
	return d.file.ReadAt(p, off)
}

func (d *FileDevice) Size() (int64, error) { return d.size, nil }

func (d *FileDevice) Close() error { return d.file.Close() }
