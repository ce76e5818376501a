package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	logger, err := New(dir, "debug")
	require.NoError(t, err)

	logger.Debug("dispatch", "action", "open")
	logger.Info("session closed", "summary", "1 file changed")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=dispatch action=open")
	assert.Contains(t, string(data), `summary="1 file changed"`)
}

func TestLevelFilters(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("dropped")
	assert.NoError(t, logger.Close())

	var nilLogger *Logger
	assert.NoError(t, nilLogger.Close())
}
