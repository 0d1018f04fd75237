package bde

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-bde/internal/crypto"
)

func TestCredentialsSetPassword(t *testing.T) {
	var c credentials
	require.NoError(t, c.setPassword("hunter2"))
	assert.True(t, c.hasPassword)
	assert.Equal(t, crypto.HashPassword("hunter2"), c.passwordHash)
}

func TestCredentialsSetPasswordEmptyIsNotAnError(t *testing.T) {
	var c credentials
	assert.NoError(t, c.setPassword(""), "spec.md §4.5: empty input is not an error, it just leaves password_is_set false")
	assert.False(t, c.hasPassword)
}

func TestCredentialsSetRecoveryPassword(t *testing.T) {
	var c credentials
	require.NoError(t, c.setRecoveryPassword("111583-136634-584563-390915-680608-671511-398274-615517"))
	assert.True(t, c.hasRecoveryPass)
}

func TestCredentialsSetRecoveryPasswordRejectsGarbage(t *testing.T) {
	var c credentials
	assert.Error(t, c.setRecoveryPassword("not-a-recovery-password"))
	assert.False(t, c.hasRecoveryPass)
}

func TestCredentialsSetKeys(t *testing.T) {
	var c credentials
	fvek := []byte{1, 2, 3, 4}
	tweak := []byte{5, 6, 7, 8}
	require.NoError(t, c.setKeys(fvek, tweak))
	assert.True(t, c.hasDirectKeys)
	assert.Equal(t, fvek, c.fvek)
	assert.Equal(t, tweak, c.tweak)
}

func TestCredentialsSetKeysRejectsEmptyFvek(t *testing.T) {
	var c credentials
	assert.Error(t, c.setKeys(nil, nil))
	assert.False(t, c.hasDirectKeys)
}

func TestCredentialsSetKeysCopiesInput(t *testing.T) {
	var c credentials
	fvek := []byte{1, 2, 3, 4}
	require.NoError(t, c.setKeys(fvek, nil))
	fvek[0] = 0xFF
	assert.Equal(t, byte(1), c.fvek[0], "setKeys must copy its input, not alias it")
}

func TestCredentialsWipeZeroesEverything(t *testing.T) {
	var c credentials
	require.NoError(t, c.setPassword("hunter2"))
	require.NoError(t, c.setKeys([]byte{1, 2, 3}, []byte{4, 5, 6}))

	c.wipe()

	assert.False(t, c.hasPassword)
	assert.False(t, c.hasRecoveryPass)
	assert.False(t, c.hasDirectKeys)
	assert.Nil(t, c.fvek)
	assert.Nil(t, c.tweak)
	var zero [32]byte
	assert.Equal(t, zero, c.passwordHash)
}

func TestCredentialsProtectorsView(t *testing.T) {
	var c credentials
	require.NoError(t, c.setPassword("hunter2"))
	c.stretchIterations = 4

	p := c.protectors()
	assert.True(t, p.HasPassword)
	assert.Equal(t, c.passwordHash, p.PasswordHash)
	assert.Equal(t, uint32(4), p.StretchIterations)
}
