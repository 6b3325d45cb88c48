package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("APP_BASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_COURSE_CACHE_TTL_SECONDS", "")
	t.Setenv("NOTIFY_WORKERS", "")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "http://localhost:8080", cfg.App.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CourseCacheTTL)
	assert.Equal(t, 4, cfg.Notification.Workers)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "POSTGRES")
	t.Setenv("POSTGRES_DSN", "postgres://amelio@localhost/amelio")
	t.Setenv("APP_BASE_URL", "https://amelio.example.org/")
	t.Setenv("NOTIFY_WORKERS", "not-a-number")
	t.Setenv("NOTIFY_SMTP_HOST", "smtp.example.org")
	t.Setenv("REDIS_COURSE_CACHE_TTL_SECONDS", "60")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "https://amelio.example.org/tickets/7", cfg.App.TicketURL(7))
	assert.Equal(t, 4, cfg.Notification.Workers)
	assert.True(t, cfg.Notification.SMTPEnabled())
	assert.Equal(t, time.Minute, cfg.Redis.CourseCacheTTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DATABASE_DRIVER": "mysql"}},
		{"postgres without dsn", map[string]string{"DATABASE_DRIVER": "postgres", "POSTGRES_DSN": ""}},
		{"bad redis db", map[string]string{"REDIS_DB": "one"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
