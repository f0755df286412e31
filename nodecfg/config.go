// Package nodecfg holds the data-directory and logging configuration
// the enclosing node binary supplies to the persistence core. Modeled
// on the teacher's node.Config (node/config.go): a flat struct with a
// validated log level and a platform-appropriate default data directory.
package nodecfg

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config is the node-level configuration surrounding the block store.
// The core itself (blockstore, overlay) takes no configuration; this is
// purely the ambient wiring a binary needs to open one.
type Config struct {
	DataDir    string
	ChainIDHex string
	LogLevel   string
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// DefaultDataDir mirrors the teacher's DefaultDataDir: fall back to a
// dotdir name if the home directory can't be resolved.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".blockcore"
	}
	return filepath.Join(home, ".blockcore")
}

// DefaultConfig returns sane defaults for local development.
func DefaultConfig() Config {
	return Config{
		DataDir:  DefaultDataDir(),
		LogLevel: "info",
	}
}

// Validate checks the configured log level against the allowed set and
// that a data directory was supplied.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("nodecfg: data_dir required")
	}
	if _, ok := allowedLogLevels[c.LogLevel]; !ok {
		return fmt.Errorf("nodecfg: invalid log_level %q", c.LogLevel)
	}
	return nil
}

// DBPath returns the bbolt database file path under DataDir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "chains", c.ChainIDHex, "blockstore.db")
}

// EnsureDataDir creates the chain's data directory if absent.
func (c Config) EnsureDataDir() error {
	dir := filepath.Dir(c.DBPath())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("nodecfg: mkdir %s: %w", dir, err)
	}
	return nil
}
