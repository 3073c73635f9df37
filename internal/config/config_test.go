package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"weekTracker/internal/config"
	"weekTracker/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// TestLoad_Defaults тестирует значения по умолчанию без файла
func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, config.RepositoryInMemory, cfg.Repository.Type)
	assert.Equal(t, config.CacheInMemory, cfg.Cache.Type)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "5 0 * * 1", cfg.Worker.RolloverSchedule)
	assert.Equal(t, scoring.DefaultPolicy(), cfg.Scoring)
	assert.Equal(t, 25, cfg.Pomodoro.WorkMinutes)
	assert.Equal(t, 4, cfg.Pomodoro.SessionsUntilLongBreak)
}

// TestLoad_FileAndEnv тестирует чтение файла и переопределение через окружение
func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
  request_timeout: 5s
repository:
  type: postgres
database:
  url: postgres://tracker:secret@db:5432/tracker
auth:
  jwt_secret: file-secret
scoring:
  member_window: all_time
pomodoro:
  work_minutes: 50
`)
	t.Setenv("WEEKTRACKER_AUTH_JWT_SECRET", "env-secret")
	t.Setenv("WEEKTRACKER_CACHE_TYPE", "redis")
	t.Setenv("WEEKTRACKER_SERVER_RATE_LIMIT_RPM", "7")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 7, cfg.Server.RateLimitRPM)
	assert.Equal(t, config.RepositoryPostgres, cfg.Repository.Type)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, config.CacheRedis, cfg.Cache.Type)
	assert.Equal(t, scoring.WindowAllTime, cfg.Scoring.MemberWindow)
	assert.Equal(t, 50, cfg.Pomodoro.WorkMinutes)
	assert.Equal(t, 5, cfg.Pomodoro.ShortBreakMinutes)
	assert.NoError(t, cfg.Validate())
}

// TestLoad_MissingFile тестирует ошибку для явно указанного несуществующего файла
func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

// TestValidate тестирует проверку настроек сервера
func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	valid := func() *config.Config {
		cfg, err := config.Load("")
		require.NoError(t, err)
		cfg.Auth.JWTSecret = "secret"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "valid defaults with secret",
			mutate: func(c *config.Config) {},
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *config.Config) { c.Auth.JWTSecret = "" },
			wantErr: "auth.jwt_secret",
		},
		{
			name:    "postgres without url",
			mutate:  func(c *config.Config) { c.Repository.Type = config.RepositoryPostgres },
			wantErr: "database.url",
		},
		{
			name:    "unknown repository",
			mutate:  func(c *config.Config) { c.Repository.Type = "sqlite" },
			wantErr: "repository.type",
		},
		{
			name:    "bad cron schedule",
			mutate:  func(c *config.Config) { c.Worker.RolloverSchedule = "every monday" },
			wantErr: "worker.rollover_schedule",
		},
		{
			name:    "bad scoring window",
			mutate:  func(c *config.Config) { c.Scoring.GroupWindow = "monthly" },
			wantErr: "monthly",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestDump тестирует вывод конфигурации со скрытыми секретами
func TestDump(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Auth.JWTSecret = "super-secret"
	cfg.Database.URL = "postgres://tracker:hunter2@db:5432/tracker"
	cfg.Notify.Telegram.Token = "123:abc"

	var buf bytes.Buffer
	require.NoError(t, cfg.Dump(&buf))

	out := buf.String()
	assert.NotContains(t, out, "super-secret")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "123:abc")
	assert.Contains(t, out, "postgres://tracker:******@db:5432/tracker")
	assert.Contains(t, out, "rollover_schedule:")
	assert.Contains(t, out, "5 0 * * 1")
	assert.Equal(t, "super-secret", cfg.Auth.JWTSecret)
}
