package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8000), cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, 720*time.Hour, cfg.Auth.TokenExpiry)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 2, cfg.Tasks.Workers)
	assert.Equal(t, 5, cfg.Rating.MaxConflictRetries)
	assert.False(t, cfg.IsProduction())
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_PATH", "/tmp/books.db")
	t.Setenv("ENV", "production")
	t.Setenv("METADATA_ENABLED", "true")
	t.Setenv("TASK_RELEASE_AFTER", "2m")

	cfg := NewConfig()

	assert.Equal(t, int32(9090), cfg.HTTP.Port)
	assert.Equal(t, "/tmp/books.db", cfg.Database.Path)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Metadata.Enabled)
	assert.Equal(t, 2*time.Minute, cfg.Tasks.ReleaseAfter)
}
