package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CLOCK_CONFIG", "PORT", "ALLOW_ORIGINS", "LOG_LEVEL", "SESSION_IDLE_TIMEOUT",
		"DEFAULT_MINUTES", "DEFAULT_INCREMENT_SECONDS", "DEFAULT_SOUND",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "clock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "8080"
  log_level: debug
  session_idle_timeout: 5m
  allow_origins: ["https://clock.example"]
clock:
  minutes_per_player: [3, 7]
  increment_seconds: 2
  same_time_for_both: false
  sound_enabled: false
`), 0o600))
	t.Setenv("CLOCK_CONFIG", path)
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_INCREMENT_SECONDS", "10")
	t.Setenv("DEFAULT_SOUND", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://clock.example"}, cfg.AllowOrigins)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, [2]int{3, 7}, cfg.Clock.MinutesPerPlayer)
	assert.Equal(t, 10, cfg.Clock.IncrementSeconds)
	assert.False(t, cfg.Clock.SameTimeForBoth)
	assert.False(t, cfg.Clock.SoundEnabled, "invalid env value keeps the file value")
}

func TestLoadSameTimeMirrors(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "clock.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clock:\n  minutes_per_player: [3, 7]\n"), 0o600))
	t.Setenv("CLOCK_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, [2]int{7, 7}, cfg.Clock.MinutesPerPlayer)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	t.Setenv("CLOCK_CONFIG", filepath.Join(dir, "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("clock:\n  minutes_per_player: [1, 2, 3]\n"), 0o600))
	t.Setenv("CLOCK_CONFIG", bad)
	_, err = Load()
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("clock: [\n"), 0o600))
	t.Setenv("CLOCK_CONFIG", broken)
	_, err = Load()
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_MINUTES", "3")
	t.Setenv("ALLOW_ORIGINS", "http://a,http://b")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("SESSION_IDLE_TIMEOUT", "bogus")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, [2]int{3, 3}, cfg.Clock.MinutesPerPlayer)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.AllowOrigins)
	assert.Equal(t, zerolog.WarnLevel, cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
}
