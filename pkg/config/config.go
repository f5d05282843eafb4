package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Telegram TelegramConfig `json:"telegram" label:"Telegram"`
	TTS      TTSConfig      `json:"tts" label:"Speech Synthesis"`
	Health   HealthConfig   `json:"health" label:"Liveness Probe"`
	Debounce DebounceConfig `json:"debounce" label:"Input Debounce"`
	Limits   LimitsConfig   `json:"limits" label:"Limits"`
}

type TelegramConfig struct {
	Token     string              `json:"token" label:"Token" env:"SRTSPEECH_TELEGRAM_TOKEN"`
	Proxy     string              `json:"proxy" label:"Proxy" env:"SRTSPEECH_TELEGRAM_PROXY"`
	AllowFrom FlexibleStringSlice `json:"allow_from" label:"Allow From" env:"SRTSPEECH_TELEGRAM_ALLOW_FROM"`
}

type TTSConfig struct {
	APIBase        string `json:"api_base" label:"API Base URL" env:"SRTSPEECH_TTS_API_BASE"`
	APIKey         string `json:"api_key" label:"API Key" env:"SRTSPEECH_TTS_API_KEY"`
	Model          string `json:"model" label:"Model" env:"SRTSPEECH_TTS_MODEL"`
	DefaultVoice   string `json:"default_voice" label:"Default Voice" env:"SRTSPEECH_TTS_DEFAULT_VOICE"`
	TimeoutSeconds int    `json:"timeout_seconds" label:"Timeout (s)" env:"SRTSPEECH_TTS_TIMEOUT_SECONDS"`
}

type HealthConfig struct {
	Enabled bool `json:"enabled" label:"Enabled" env:"SRTSPEECH_HEALTH_ENABLED"`
	Port    int  `json:"port" label:"Port" env:"SRTSPEECH_HEALTH_PORT"`
}

type DebounceConfig struct {
	// WindowSeconds is the inactivity window after the last fragment
	// before the buffered text is treated as complete.
	WindowSeconds float64 `json:"window_seconds" label:"Window (s)" env:"SRTSPEECH_DEBOUNCE_WINDOW_SECONDS"`
}

type LimitsConfig struct {
	MaxBufferBytes     int `json:"max_buffer_bytes" label:"Max Buffer Bytes" env:"SRTSPEECH_LIMITS_MAX_BUFFER_BYTES"`
	GeneratesPerMinute int `json:"generates_per_minute" label:"Generates Per Minute" env:"SRTSPEECH_LIMITS_GENERATES_PER_MINUTE"` // 0 = unlimited
}

// DebounceWindow returns the configured debounce window as a duration.
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.Debounce.WindowSeconds * float64(time.Second))
}

// TTSTimeout returns the synthesis request timeout as a duration.
func (c *Config) TTSTimeout() time.Duration {
	return time.Duration(c.TTS.TimeoutSeconds) * time.Second
}

// LoadConfig reads the JSON config at path (missing file falls back to
// defaults) and applies environment overrides on top.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate reports configuration the bot cannot start without.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required (SRTSPEECH_TELEGRAM_TOKEN)")
	}
	if c.Debounce.WindowSeconds <= 0 {
		return fmt.Errorf("debounce window must be positive")
	}
	return nil
}
