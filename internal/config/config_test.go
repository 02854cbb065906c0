// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/offices")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "token", cfg.JWT.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenExpire)
	assert.Equal(t, "uploads", cfg.Uploads.Dir)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "http://localhost:3000/login", cfg.Frontend.LoginURL())
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "mailer@example.com")
	t.Setenv("FRONTEND_URL", "https://offices.example.com/")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, "mailer@example.com", cfg.SMTP.Sender())
	assert.Equal(t, "https://offices.example.com/login", cfg.Frontend.LoginURL())
}

func TestLoadYAMLFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  port: 7000\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing database url",
			env:  map[string]string{"REDIS_URL": "redis://localhost:6379"},
		},
		{
			name: "smtp host without sender",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost/offices",
				"REDIS_URL":    "redis://localhost:6379",
				"SMTP_HOST":    "smtp.example.com",
			},
		},
		{
			name: "production without smtp",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost/offices",
				"REDIS_URL":    "redis://localhost:6379",
				"ENVIRONMENT":  "production",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
