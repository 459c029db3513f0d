package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9091", cfg.Port)
	assert.Equal(t, ":9091", cfg.Addr())
	assert.True(t, cfg.IsDev())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 200, cfg.NotificationCapacity)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.RedisURL)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("NOTIFICATION_CAPACITY", "50")
	t.Setenv("SEED_DEMO", "false")
	t.Setenv("SHUTDOWN_TIMEOUT", "10s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "medidesk:events", cfg.RedisStream)
	assert.Equal(t, 50, cfg.NotificationCapacity)
	assert.False(t, cfg.SeedDemo)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7070\nLOG_FORMAT=console\n"), 0o600))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoad_MalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7070\nthis line is garbage\n"), 0o600))
	chdir(t, dir)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read .env")
}

func TestLoad_MissingDotEnv(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9091", cfg.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Port: "9091", LogFormat: "json", NotificationCapacity: 10, ShutdownTimeout: time.Second}
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(c *Config){
		"port":     func(c *Config) { c.Port = "" },
		"capacity": func(c *Config) { c.NotificationCapacity = 0 },
		"maxlen":   func(c *Config) { c.RedisStreamMaxLen = -1 },
		"stream":   func(c *Config) { c.RedisURL = "redis://x"; c.RedisStream = "" },
		"shutdown": func(c *Config) { c.ShutdownTimeout = 0 },
		"format":   func(c *Config) { c.LogFormat = "xml" },
	}
	for name, mutate := range cases {
		c := valid()
		mutate(c)
		assert.Error(t, c.Validate(), name)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup, like testing.T.Chdir in newer Go releases.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(old)) })
}
