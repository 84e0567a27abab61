package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmair/clipgate/shared/config"
)

func parseFlags(t *testing.T, args ...string) (*cobra.Command, *flagValues) {
	t.Helper()
	v := &flagValues{}
	cmd := &cobra.Command{}
	bindFlags(cmd.Flags(), v)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd, v
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir()) // keep a real ~/.clipgate/config.toml out of the test
	cmd, v := parseFlags(t)

	cfg, err := loadConfig(cmd, v)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Addr)
	assert.Equal(t, config.DefaultPort, cfg.Port)
	assert.Equal(t, "euc-jp", cfg.Encoding)
}

func TestLoadConfigFlagsBeatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("key = \"from-file\"\nport = 1111\n"), 0o600))

	cmd, v := parseFlags(t, "--config", path, "--port", "3333")

	cfg, err := loadConfig(cmd, v)
	require.NoError(t, err)
	// Explicit flag wins; untouched settings come from the file.
	assert.Equal(t, 3333, cfg.Port)
	assert.Equal(t, "from-file", cfg.Key)
}

func TestLoadConfigExplicitMissingFile(t *testing.T) {
	cmd, v := parseFlags(t, "--config", filepath.Join(t.TempDir(), "nope.toml"))
	_, err := loadConfig(cmd, v)
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadEncoding(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cmd, v := parseFlags(t, "--encoding", "klingon-1")
	_, err := loadConfig(cmd, v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoding")
}

func TestLoadConfigRejectsBadBackend(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cmd, v := parseFlags(t, "--backend", "floppy")
	_, err := loadConfig(cmd, v)
	assert.Error(t, err)
}

func TestNewLoggerLevels(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, newLogger(0).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger(1).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, newLogger(2).GetLevel())
}
