package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger builds the application logger. The terminal belongs to the UI,
// so logs only ever go to a file: the configured log_file, or the state
// directory when verbose is set. Otherwise logging is disabled.
func NewLogger(cfg Config, verbose bool) (zerolog.Logger, io.Closer, error) {
	path := cfg.LogFile
	if path == "" && verbose {
		dir, err := stateDir()
		if err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		path = filepath.Join(dir, appName, appName+".log")
	}
	if path == "" {
		return zerolog.Nop(), nopCloser{}, nil
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	log := zerolog.New(f).Level(level).With().Timestamp().Str("app", appName).Logger()
	return log, f, nil
}

// stateDir resolves $XDG_STATE_HOME, falling back to ~/.local/state.
func stateDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state"), nil
}
