package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Log
		Tasks
		Metadata
		Rating
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		Environment              string // "development" or "production"
	}
	Database struct {
		Path     string
		LogLevel string // gorm logger level: silent, error, warn, info
	}
	Auth struct {
		TokenExpiry time.Duration
		BcryptCost  int
	}
	Log struct {
		Level      string
		File       string // Optional log file, rotated by lumberjack
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Metadata struct {
		Enabled  bool
		Schedule string // Cron format: "30 3 * * *" = daily at 03:30
		BaseURL  string
	}
	Rating struct {
		MaxConflictRetries int // Attempts for a rate call that hit a concurrent writer
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("env", "development")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_log_level", "warn")

	// Auth defaults
	v.SetDefault("auth_token_expiry", "720h") // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 100)
	v.SetDefault("log_max_backups", 5)
	v.SetDefault("log_max_age_days", 30)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Metadata enrichment defaults
	v.SetDefault("metadata_enabled", false)
	v.SetDefault("metadata_schedule", "30 3 * * *")
	v.SetDefault("metadata_base_url", DefaultOpenLibraryURL)

	v.SetDefault("rating_max_conflict_retries", 5)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			Environment:              v.GetString("ENV"),
		},
		Database: Database{
			Path:     v.GetString("DATABASE_PATH"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		Auth: Auth{
			TokenExpiry: v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:  v.GetInt("AUTH_BCRYPT_COST"),
		},
		Log: Log{
			Level:      v.GetString("LOG_LEVEL"),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Metadata: Metadata{
			Enabled:  v.GetBool("METADATA_ENABLED"),
			Schedule: v.GetString("METADATA_SCHEDULE"),
			BaseURL:  v.GetString("METADATA_BASE_URL"),
		},
		Rating: Rating{
			MaxConflictRetries: v.GetInt("RATING_MAX_CONFLICT_RETRIES"),
		},
	}
}

// IsProduction reports whether the service runs with production defaults
// (JSON logs, gin release mode).
func (c *Config) IsProduction() bool {
	return c.Global.Environment == "production"
}
