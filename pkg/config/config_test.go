package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8102", cfg.TTS.APIBase)
	assert.Equal(t, 10000, cfg.Health.Port)
	assert.Equal(t, 2500*time.Millisecond, cfg.DebounceWindow())
	assert.Equal(t, 64*1024, cfg.Limits.MaxBufferBytes)
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
  "telegram": {"token": "file-token", "allow_from": ["123", 456]},
  "debounce": {"window_seconds": 1.5},
  "health": {"enabled": false, "port": 9999}
}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	t.Setenv("SRTSPEECH_TELEGRAM_TOKEN", "env-token")
	t.Setenv("SRTSPEECH_TTS_DEFAULT_VOICE", "ja-JP-NanamiNeural")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.Token, "env wins over file")
	assert.Equal(t, FlexibleStringSlice{"123", "456"}, cfg.Telegram.AllowFrom)
	assert.Equal(t, "ja-JP-NanamiNeural", cfg.TTS.DefaultVoice)
	assert.Equal(t, 9999, cfg.Health.Port)
	assert.False(t, cfg.Health.Enabled)
	assert.Equal(t, 1500*time.Millisecond, cfg.DebounceWindow())
}

func TestLoadConfigMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate(), "empty token must be rejected")

	cfg.Telegram.Token = "t"
	assert.NoError(t, cfg.Validate())

	cfg.Debounce.WindowSeconds = 0
	assert.Error(t, cfg.Validate())
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.Telegram.Token = "secret"

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", loaded.Telegram.Token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
