package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional ubcopy configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
}

// DefaultsConfig holds persistent flag defaults. A nil field means "not set";
// the command-line default applies.
type DefaultsConfig struct {
	BufferMB      *int    `toml:"buffer_mb"`
	Overwrite     *bool   `toml:"overwrite"`
	Verify        *bool   `toml:"verify"`
	Progress      *bool   `toml:"progress"`
	PreserveTimes *bool   `toml:"preserve_times"`
	Hash          *string `toml:"hash"`
	SyncThreshold *string `toml:"sync_threshold"`
	BWLimit       *string `toml:"bwlimit"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "ubcopy", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path. A missing file yields a zero Config.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	d := c.Defaults
	if d.BufferMB != nil && *d.BufferMB <= 0 {
		return fmt.Errorf("buffer_mb must be positive, got %d", *d.BufferMB)
	}
	if d.SyncThreshold != nil {
		if _, err := ParseSize(*d.SyncThreshold); err != nil {
			return fmt.Errorf("sync_threshold: %w", err)
		}
	}
	if d.BWLimit != nil {
		if _, err := ParseSize(*d.BWLimit); err != nil {
			return fmt.Errorf("bwlimit: %w", err)
		}
	}
	return nil
}
