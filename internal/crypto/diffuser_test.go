package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSector(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*37 + 11)
	}
	return b
}

func TestDiffuserARoundTrip(t *testing.T) {
	data := sampleSector(512)
	original := append([]byte(nil), data...)

	diffuserAForward(data)
	assert.NotEqual(t, original, data)

	diffuserAInverse(data)
	assert.Equal(t, original, data)
}

func TestDiffuserBRoundTrip(t *testing.T) {
	data := sampleSector(512)
	original := append([]byte(nil), data...)

	diffuserBForward(data)
	assert.NotEqual(t, original, data)

	diffuserBInverse(data)
	assert.Equal(t, original, data)
}

func TestSectorKeyStreamDeterministic(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	a, err := sectorKeyStream(key, 5, 512)
	require.NoError(t, err)
	b, err := sectorKeyStream(key, 5, 512)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := sectorKeyStream(key, 6, 512)
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "different block keys must diverge")
}
