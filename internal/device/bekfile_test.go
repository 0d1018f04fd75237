package device

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-bde/internal/types"
)

func buildBekEntry(value []byte) []byte {
	size := types.EntryHeaderSize + len(value)
	b := make([]byte, size)
	binary.LittleEndian.PutUint16(b[0:2], uint16(size))
	binary.LittleEndian.PutUint16(b[2:4], uint16(types.EntryTypeStartupKey))
	binary.LittleEndian.PutUint16(b[4:6], uint16(types.ValueTypeKey))
	binary.LittleEndian.PutUint16(b[6:8], types.EntryVersion1)
	copy(b[8:], value)
	return b
}

func buildExternalKeyValue(identifier types.GUID, keyData []byte) []byte {
	nestedKey := make([]byte, 4+len(keyData))
	binary.LittleEndian.PutUint32(nestedKey[0:4], uint32(types.EncryptionMethodAES256CBC))
	copy(nestedKey[4:], keyData)

	nestedSize := types.EntryHeaderSize + len(nestedKey)
	nested := make([]byte, nestedSize)
	binary.LittleEndian.PutUint16(nested[0:2], uint16(nestedSize))
	binary.LittleEndian.PutUint16(nested[2:4], uint16(types.EntryTypeStartupKey))
	binary.LittleEndian.PutUint16(nested[4:6], uint16(types.ValueTypeKey))
	binary.LittleEndian.PutUint16(nested[6:8], types.EntryVersion1)
	copy(nested[8:], nestedKey)

	value := make([]byte, 24)
	copy(value[0:16], identifier[:])
	value = append(value, nested...)
	return value
}

func TestParseStartupKeyFile(t *testing.T) {
	var identifier types.GUID
	for i := range identifier {
		identifier[i] = byte(i + 1)
	}
	keyData := make([]byte, 32)
	for i := range keyData {
		keyData[i] = byte(0x80 + i)
	}

	entryValue := buildExternalKeyValue(identifier, keyData)
	entry := buildBekEntry(entryValue)

	data := append(make([]byte, bekHeaderSize), entry...)

	ek, err := ParseStartupKeyFile(data)
	require.NoError(t, err)
	assert.Equal(t, identifier, ek.Identifier)
	require.NotNil(t, ek.Key)
	assert.Equal(t, keyData, ek.Key.KeyData)
}

func TestParseStartupKeyFileTooShort(t *testing.T) {
	_, err := ParseStartupKeyFile(make([]byte, 10))
	assert.Error(t, err)
}

func TestParseStartupKeyFileNoStartupKeyEntry(t *testing.T) {
	data := make([]byte, bekHeaderSize)
	_, err := ParseStartupKeyFile(data)
	assert.Error(t, err)
}
