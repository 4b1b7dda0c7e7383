package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: debug\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 5, cfg.Collection.MaxQueries)
	assert.Equal(t, time.Second, cfg.Collection.RequestDelay)
	assert.Equal(t, 6*time.Hour, cfg.Analysis.CacheTTL)
	assert.Equal(t, ProviderNone, cfg.Analysis.Provider)
	assert.Equal(t, 20, cfg.Matching.HashtagWeight)
	assert.Equal(t, 100, cfg.Matching.MaxScore)
	require.Len(t, cfg.Collection.Platforms, 4)
	assert.Equal(t, "short", cfg.Collection.Platforms[1].Options["video_duration"])
}

func TestLoadFileReadsSections(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: SQLite
  dsn: "file:reviews.db"
analysis:
  provider: anthropic
  cacheTtl: 10m
matching:
  minAccept: 40
collection:
  maxQueries: 3
  platforms:
    - name: VIDEO
      adapter: youtube
      endpoint: http://localhost:9999
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "file:reviews.db", cfg.Storage.DSN)
	assert.Equal(t, ProviderAnthropic, cfg.Analysis.Provider)
	assert.Equal(t, 10*time.Minute, cfg.Analysis.CacheTTL)
	assert.Equal(t, 40, cfg.Matching.MinAccept)
	assert.Equal(t, 30, cfg.Matching.NameBonus)
	assert.Equal(t, 3, cfg.Collection.MaxQueries)
	require.Len(t, cfg.Collection.Platforms, 1)
	assert.Equal(t, "http://localhost:9999", cfg.Collection.Platforms[0].Endpoint)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("INSTAGRAM_USER_ID", "1789")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := LoadFile(writeConfig(t, "analysis:\n  provider: openai\n"))
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.True(t, cfg.Telegram.Enabled())
	for _, p := range cfg.Collection.Platforms {
		switch p.Adapter {
		case AdapterYouTube:
			assert.Equal(t, "yt-key", p.APIKey)
		case AdapterInstagram:
			assert.Equal(t, "1789", p.Options["user_id"])
		}
	}
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "storage:\n  driver: redis\nanalysis:\n  provider: magic\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
	assert.Contains(t, err.Error(), "magic")

	_, err = LoadFile(writeConfig(t, "storage:\n  driver: postgres\n"))
	require.Error(t, err)
}

func TestLoadFallsBackWhenFileMissing(t *testing.T) {
	t.Setenv("REVIEWSCOUT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg := Load()
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Len(t, cfg.Collection.Platforms, 4)
}
