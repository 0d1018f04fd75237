package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGUIDString(t *testing.T) {
	g := GUID{0x03, 0x02, 0x01, 0x00, 0x05, 0x04, 0x07, 0x06,
		0x08, 0x09, 0x10, 0x11, 0x12, 0x13, 0x14, 0x15}
	assert.Equal(t, "00010203-0405-0607-0809-101112131415", g.String())
}

func TestGUIDIsZero(t *testing.T) {
	assert.True(t, GUID{}.IsZero())
	assert.False(t, GUID{1}.IsZero())
}

func TestFileTimeUnix(t *testing.T) {
	// 1970-01-01T00:00:00Z in FILETIME units.
	epoch := FileTime(fileTimeEpochOffsetSeconds * 10_000_000)
	sec, nsec := epoch.Unix()
	assert.Equal(t, int64(0), sec)
	assert.Equal(t, int64(0), nsec)
}
