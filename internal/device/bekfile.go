package device

import (
	"fmt"
	"os"

	"github.com/deploymenttheory/go-bde/internal/errs"
	"github.com/deploymenttheory/go-bde/internal/parsers/metadata"
	"github.com/deploymenttheory/go-bde/internal/parsers/properties"
	"github.com/deploymenttheory/go-bde/internal/types"
)

// bekHeaderSize mirrors the in-volume MetadataHeader's 48-byte layout; a
// .BEK startup-key file begins with the same header shape before its
// single entry stream (spec.md §6).
const bekHeaderSize = types.MetadataHeaderSize

// ReadStartupKeyFile parses a BitLocker .BEK external-key file and returns
// the ExternalKey it carries — the credential UnwrapVMK needs for a
// startup-key-protected volume.
func ReadStartupKeyFile(path string) (*types.ExternalKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.IoError{Kind: errs.Backend, Err: fmt.Errorf("read %s: %w", path, err)}
	}
	return ParseStartupKeyFile(data)
}

// ParseStartupKeyFile decodes an already-read .BEK file's bytes.
func ParseStartupKeyFile(data []byte) (*types.ExternalKey, error) {
	if len(data) < bekHeaderSize {
		return nil, &errs.FormatError{Kind: errs.SizeOutOfBounds, Field: "bek_header",
			Err: fmt.Errorf("need at least %d bytes, got %d", bekHeaderSize, len(data))}
	}

	entries, _, err := metadata.ReadEntries(data[bekHeaderSize:])
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.EntryType == types.EntryTypeStartupKey {
			return properties.ParseExternalKey(entry.ValueData)
		}
	}
	return nil, &errs.FormatError{Kind: errs.BadEntry, Field: "bek_entries",
		Err: fmt.Errorf("no startup-key entry found")}
}
