package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/chojs23/mergepane/internal/scrollsync"
)

const (
	appName        = "mergepane"
	configFileName = "config.toml"
)

type Config struct {
	Theme        string `toml:"theme"`
	UndoDepth    int    `toml:"undo_depth"`
	Backup       bool   `toml:"backup"`
	StageOnWrite bool   `toml:"stage_on_write"`
	LogFile      string `toml:"log_file"`
	LogLevel     string `toml:"log_level"`

	Scroll scrollsync.Config `toml:"scroll"`
	Themes map[string]Theme  `toml:"themes"`
}

func Default() Config {
	return Config{
		Theme:     "default",
		UndoDepth: 100,
		LogLevel:  "info",
		Scroll:    scrollsync.DefaultConfig(),
	}
}

// Path is the default config file location, under the user config dir.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// Load reads the config at path, or at Path() when path is empty. A missing
// file at the default location is not an error; a missing explicit path is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if home, err := os.UserHomeDir(); err == nil {
		cfg.LogFile = expandHome(cfg.LogFile, home)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.UndoDepth < 0 {
		return fmt.Errorf("undo_depth must be >= 0, got %d", c.UndoDepth)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if _, err := c.ResolveTheme(); err != nil {
		return err
	}
	return nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
