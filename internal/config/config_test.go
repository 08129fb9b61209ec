package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/overssh/overssh/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0, cfg.Ping.Count, "default is an unbounded run")
	assert.Equal(t, time.Second, cfg.Ping.Interval)
	assert.Equal(t, 10*time.Second, cfg.Ping.Timeout)
	assert.Equal(t, "diff", cfg.Diff.Tool)
	assert.Equal(t, "colordiff", cfg.Diff.Colorizer)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
ping:
  count: 5
  interval: 2s
  timeout: 3s
diff:
  tool: gdiff
  colorizer: delta
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Ping.Count)
	assert.Equal(t, 2*time.Second, cfg.Ping.Interval)
	assert.Equal(t, 3*time.Second, cfg.Ping.Timeout)
	assert.Equal(t, "gdiff", cfg.Diff.Tool)
	assert.Equal(t, "delta", cfg.Diff.Colorizer)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "ping:\n  count: 3\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Ping.Count)
	assert.Equal(t, time.Second, cfg.Ping.Interval, "unset fields keep defaults")
	assert.Equal(t, "diff", cfg.Diff.Tool)
}

func TestLoad_ExplicitMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, oerrors.IsCode(err, oerrors.ErrConfig))
}

func TestLoad_MalformedFileErrors(t *testing.T) {
	path := writeConfig(t, "ping: [not a map\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, oerrors.IsCode(err, oerrors.ErrConfig))
}

func TestLoad_MissingGlobalFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
