package bde

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-bde/internal/crypto"
)

// Config holds ambient, non-specified tuning knobs for Volume: sector-cache
// capacity and a key-stretching iteration count (spec.md §4.5 fixes the
// on-disk default at 2^20). Volume reads only SectorCacheCapacity;
// StretchIterations is loaded and defaulted here but not passed to Unlock,
// which always stretches with crypto.StretchIterations.
// Grounded on the teacher's internal/device/dmg.go LoadDMGConfig.
type Config struct {
	SectorCacheCapacity int    `mapstructure:"sector_cache_capacity"`
	StretchIterations   uint32 `mapstructure:"stretch_iterations"`
}

// DefaultConfig returns the config LoadConfig would produce with no config
// file present and no BDE_* environment variables set.
func DefaultConfig() *Config {
	return &Config{
		SectorCacheCapacity: 256,
		StretchIterations:   crypto.StretchIterations,
	}
}

// LoadConfig loads Config using Viper, searching the working directory, a
// ./config subdirectory, and the user's and system's bde config
// directories, falling back to DefaultConfig's values. Environment
// variables are read under the BDE_ prefix (e.g. BDE_STRETCH_ITERATIONS).
func LoadConfig() (*Config, error) {
	viper.SetConfigName("bde-config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.bde")
	viper.AddConfigPath("/etc/bde")

	def := DefaultConfig()
	viper.SetDefault("sector_cache_capacity", def.SectorCacheCapacity)
	viper.SetDefault("stretch_iterations", def.StretchIterations)

	viper.SetEnvPrefix("BDE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("bde: error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("bde: error unmarshaling config: %w", err)
	}
	return &cfg, nil
}
