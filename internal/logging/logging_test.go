package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/config"
)

func TestNew_Development(t *testing.T) {
	logger, err := New(config.Log{}, false)
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.True(t, logger.Core().Enabled(-1), "development logger should enable debug")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.Log{Level: "loud"}, true)
	assert.Error(t, err)
}

func TestNew_WritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "bookshelf.log")

	logger, err := New(config.Log{Level: "info", File: logPath, MaxSizeMB: 1}, true)
	require.NoError(t, err)

	logger.Info("book rated")
	_ = logger.Sync()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "book rated")
}
