package config

import "github.com/yungtweek/chat-mock/internal/logger"

func ApplyPresetOverrides(cfg *Config) {
	logger.Log.Infow("[config] apply preset overrides", "preset", cfg.Preset)
	switch cfg.Preset {
	case "echo":
		// Reference pacing: one word every 100ms, no injected failures.
		cfg.ChunkDelayMs = 100

	case "instant":
		// Tests and CI: no pacing at all.
		cfg.ChunkDelayMs = 0

	case "slow":
		// Slow model: exercises client timeouts and progressive rendering.
		cfg.ChunkDelayMs = 400

	case "flaky":
		// Realistic pacing with one request in five rejected up front.
		cfg.ChunkDelayMs = 100
		cfg.ErrorRate = 0.2
		cfg.ErrorMode = "mixed"
	}
}
