// Package config is for app wide settings that are unmarshalled
// from Viper (see: /internal/cli)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"motifscan/internal/strategy"
)

// TierSettings sets the chunk geometry for one scanning tier.
type TierSettings struct {
	// chunk size in bases
	ChunkSize int `mapstructure:"chunk-size"`

	// overlap between neighboring chunks in bases
	Overlap int `mapstructure:"overlap"`
}

// ScanSettings control how a sequence is decomposed and scanned.
type ScanSettings struct {
	// worker count for the chunk pool, 0 means auto
	Workers int `mapstructure:"workers"`

	// run chunks one at a time on the calling goroutine
	Sequential bool `mapstructure:"sequential"`

	// per-scan deadline for the worker pool, 0 disables it
	Timeout time.Duration `mapstructure:"timeout"`

	// motif classes to scan for, empty means all registered
	Classes []string `mapstructure:"classes"`

	// optional TOML file overriding the built-in seed table
	SeedFile string `mapstructure:"seed-file"`

	// chunk geometry per tier
	Micro TierSettings `mapstructure:"micro"`
	Meso  TierSettings `mapstructure:"meso"`
	Macro TierSettings `mapstructure:"macro"`

	// sequence length cut-points between chunking plans
	DirectThreshold     int `mapstructure:"direct-threshold"`
	SingleTierThreshold int `mapstructure:"single-tier-threshold"`
	DoubleTierThreshold int `mapstructure:"double-tier-threshold"`
}

// Config is the root-level settings struct and is a mix of settings
// available in motifscan.yaml and those set from the command line.
type Config struct {
	// directory holding stored sequences and results
	DataDir string `mapstructure:"data-dir"`

	// verbose logging
	Verbose bool `mapstructure:"verbose"`

	// scan settings
	Scan ScanSettings `mapstructure:"scan"`
}

// SetDefaults registers the default value for every setting with Viper.
// Called once before flags are bound so flag values win over defaults.
func SetDefaults() {
	viper.SetDefault("data-dir", defaultDataDir())
	viper.SetDefault("verbose", false)

	viper.SetDefault("scan.workers", 0)
	viper.SetDefault("scan.sequential", false)
	viper.SetDefault("scan.timeout", time.Duration(0))
	viper.SetDefault("scan.classes", []string{})
	viper.SetDefault("scan.seed-file", "")

	def := strategy.DefaultTiers()
	viper.SetDefault("scan.micro.chunk-size", def.Micro.ChunkSize)
	viper.SetDefault("scan.micro.overlap", def.Micro.Overlap)
	viper.SetDefault("scan.meso.chunk-size", def.Meso.ChunkSize)
	viper.SetDefault("scan.meso.overlap", def.Meso.Overlap)
	viper.SetDefault("scan.macro.chunk-size", def.Macro.ChunkSize)
	viper.SetDefault("scan.macro.overlap", def.Macro.Overlap)

	th := strategy.DefaultThresholds()
	viper.SetDefault("scan.direct-threshold", th.Direct)
	viper.SetDefault("scan.single-tier-threshold", th.SingleTier)
	viper.SetDefault("scan.double-tier-threshold", th.DoubleTier)
}

// Init points Viper at the settings file and reads it if present.
// A missing file is not an error, the defaults carry the app.
func Init(cfgFile string) error {
	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("motifscan")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}
	viper.SetEnvPrefix("MOTIFSCAN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("read settings: %w", err)
	}
	return nil
}

// New returns a Config populated from Viper settings, either the local
// motifscan.yaml or command line arguments.
func New() (Config, error) {
	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode settings: %w", err)
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	return c, nil
}

// Tiers converts the configured chunk geometry to a strategy tier set.
func (c Config) Tiers() strategy.Tiers {
	return strategy.Tiers{
		Micro: strategy.TierConfig{ChunkSize: c.Scan.Micro.ChunkSize, Overlap: c.Scan.Micro.Overlap},
		Meso:  strategy.TierConfig{ChunkSize: c.Scan.Meso.ChunkSize, Overlap: c.Scan.Meso.Overlap},
		Macro: strategy.TierConfig{ChunkSize: c.Scan.Macro.ChunkSize, Overlap: c.Scan.Macro.Overlap},
	}
}

// Thresholds converts the configured length cutoffs to strategy thresholds.
func (c Config) Thresholds() strategy.Thresholds {
	return strategy.Thresholds{
		Direct:     c.Scan.DirectThreshold,
		SingleTier: c.Scan.SingleTierThreshold,
		DoubleTier: c.Scan.DoubleTierThreshold,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".motifscan"
	}
	return filepath.Join(home, ".motifscan")
}
