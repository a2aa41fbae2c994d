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
		Uploads
		Auth
		Audit
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Uploads struct {
		Dir       string
		MaxSizeMB int64
	}

	Auth struct {
		// SecretKey is the process-wide secret every credential digest and
		// session token is keyed with. Required in serve mode; rotating it
		// invalidates all stored credentials.
		SecretKey string

		CookieName    string
		SecureCookies bool

		// Rate limiting for login attempts
		MaxLoginAttempts int
		RateLimitWindow  time.Duration
		LockoutDuration  time.Duration
	}

	Audit struct {
		RetentionDays int
	}

	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
		Schedule        string // cron expression for periodic cleanup runs
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Upload defaults
	v.SetDefault("uploads_dir", "./uploads")
	v.SetDefault("uploads_max_size_mb", 5)

	// Auth defaults
	v.SetDefault("auth_secret_key", "")
	v.SetDefault("auth_cookie_name", DefaultSessionCookie)
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Audit defaults
	v.SetDefault("audit_retention_days", 30)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("cleanup_schedule", "0 3 * * *") // daily at 03:00

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Uploads: Uploads{
			Dir:       v.GetString("UPLOADS_DIR"),
			MaxSizeMB: v.GetInt64("UPLOADS_MAX_SIZE_MB"),
		},
		Auth: Auth{
			SecretKey:        v.GetString("AUTH_SECRET_KEY"),
			CookieName:       v.GetString("AUTH_COOKIE_NAME"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
			Schedule:        v.GetString("CLEANUP_SCHEDULE"),
		},
	}
}
