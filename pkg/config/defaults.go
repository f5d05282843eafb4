package config

// DefaultConfig returns the default configuration for the bot.
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Token:     "",
			AllowFrom: FlexibleStringSlice{},
		},
		TTS: TTSConfig{
			APIBase:        "http://localhost:8102",
			Model:          "tts-1",
			DefaultVoice:   "en-US-AriaNeural",
			TimeoutSeconds: 60,
		},
		Health: HealthConfig{
			Enabled: true,
			Port:    10000,
		},
		Debounce: DebounceConfig{
			WindowSeconds: 2.5,
		},
		Limits: LimitsConfig{
			MaxBufferBytes:     64 * 1024,
			GeneratesPerMinute: 6,
		},
	}
}
