package object

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/driftworks/objectcore/pkg/generic"
)

// Config is the runtime configuration for the object core. It decodes from
// YAML or JSON.
type Config struct {
	// PoolBlockSize is the proxy pool growth quantum in cells. Zero
	// selects the default block size.
	PoolBlockSize int `json:"pool_block_size" yaml:"pool_block_size"`
	// Diagnostics enables live-set tracking of issued proxy cells.
	Diagnostics bool `json:"diagnostics" yaml:"diagnostics"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		PoolBlockSize: generic.DefaultBlockSize,
		Diagnostics:   true,
		LogLevel:      "info",
	}
}

// Validate checks the configuration for values Initialize cannot accept.
func (c Config) Validate() error {
	if c.PoolBlockSize < 0 {
		return fmt.Errorf("pool_block_size must not be negative, got %d", c.PoolBlockSize)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
}

// LoadConfigYAML decodes a config from YAML, filling unset fields from
// DefaultConfig.
func LoadConfigYAML(r io.Reader) (Config, error) {
	c := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

// LoadConfigJSON decodes a config from JSON, filling unset fields from
// DefaultConfig.
func LoadConfigJSON(r io.Reader) (Config, error) {
	c := DefaultConfig()
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

// LoadConfigFile loads a config file, picking the decoder by extension.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	if filepath.Ext(path) == ".json" {
		return LoadConfigJSON(f)
	}
	return LoadConfigYAML(f)
}
