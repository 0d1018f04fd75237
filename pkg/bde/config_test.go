package bde

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deploymenttheory/go-bde/internal/crypto"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 256, cfg.SectorCacheCapacity)
	assert.Equal(t, uint32(crypto.StretchIterations), cfg.StretchIterations)
}
