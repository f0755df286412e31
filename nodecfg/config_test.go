package nodecfg

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsEmptyDataDir(t *testing.T) {
	cfg := Config{LogLevel: "info"}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := Config{DataDir: "x", LogLevel: "verbose"}
	require.Error(t, cfg.Validate())
}

func TestDBPathIncludesChainID(t *testing.T) {
	cfg := Config{DataDir: "/tmp/data", ChainIDHex: "ab"}
	require.Equal(t, filepath.Join("/tmp/data", "chains", "ab", "blockstore.db"), cfg.DBPath())
}

func TestEnsureDataDirCreatesParent(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{DataDir: filepath.Join(dir, "sub"), ChainIDHex: "00", LogLevel: "info"}
	require.NoError(t, cfg.EnsureDataDir())
	require.DirExists(t, filepath.Dir(cfg.DBPath()))
}
