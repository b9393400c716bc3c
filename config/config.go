// Package config loads bpctl's settings from an optional YAML file and
// BPCTL_-prefixed environment variables, backed by spf13/viper the way the
// teacher monorepo's server commands load their configuration.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"github.com/yiyangc91/bustub/errors"
)

// Config holds the settings bpctl's demo and bench commands need to build
// a BufferPoolManager.
type Config struct {
	// PoolSize is the number of frames in the buffer pool.
	PoolSize int `mapstructure:"pool-size"`

	// DiskBackend selects which DiskManager implementation to use: "mem"
	// or "file".
	DiskBackend string `mapstructure:"disk-backend"`

	// DataDir is where FileDiskManager creates its backing file. The "mem"
	// backend ignores it: MemDiskManager's spill file always goes in the
	// system temp directory.
	DataDir string `mapstructure:"data-dir"`

	// SpillThresholdPages is loaded but not read by bpctl's commands: they
	// build MemDiskManager with the pool size as its spill threshold.
	SpillThresholdPages int `mapstructure:"spill-threshold-pages"`
}

// Defaults returns the configuration bpctl falls back to absent a config
// file, flags, or environment variables.
func Defaults() Config {
	return Config{
		PoolSize:            64,
		DiskBackend:         "mem",
		DataDir:             "",
		SpillThresholdPages: 128,
	}
}

// Load reads settings from path (if non-empty) and BPCTL_-prefixed
// environment variables, layered over Defaults().
func Load(path string) (Config, error) {
	v := viper.New()
	d := Defaults()
	v.SetDefault("pool-size", d.PoolSize)
	v.SetDefault("disk-backend", d.DiskBackend)
	v.SetDefault("data-dir", d.DataDir)
	v.SetDefault("spill-threshold-pages", d.SpillThresholdPages)

	v.SetEnvPrefix("BPCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	return cfg, nil
}
