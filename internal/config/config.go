package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungtweek/chat-mock/internal/mock"
)

type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"` // 0 disables the gRPC listener
	Profile  string `yaml:"profile"`
	LogLevel string `yaml:"log_level"`
	Preset   string `yaml:"preset"` // echo|instant|slow|flaky; empty keeps explicit values

	// Streaming
	ChunkDelayMs int  `yaml:"chunk_delay_ms"`
	DonePayload  bool `yaml:"done_payload"` // serialize the terminal chunk into the "done" event

	// Embedding layers around the generator
	CORSOrigins []string `yaml:"cors_origins"`
	Models      []string `yaml:"models"` // empty accepts any model
	ErrorRate   float64  `yaml:"error_rate"`
	ErrorMode   string   `yaml:"error_mode"` // mixed|429|500

	MetricsEnabled    bool `yaml:"metrics_enabled"`
	ShutdownTimeoutMs int  `yaml:"shutdown_timeout_ms"`
}

func Defaults() Config {
	return Config{
		Host:              "127.0.0.1",
		Port:              3000,
		GRPCPort:          0,
		Profile:           "default",
		LogLevel:          "info",
		Preset:            "",
		ChunkDelayMs:      int(mock.DefaultChunkDelay / time.Millisecond),
		CORSOrigins:       []string{"*"},
		ErrorRate:         0,
		ErrorMode:         "mixed",
		MetricsEnabled:    true,
		ShutdownTimeoutMs: 10000,
	}
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
func getEnvFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
func getEnvStr(k string, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvList(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

// LoadConfig builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func LoadConfig() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadFile overlays the YAML document at path onto cfg. Keys missing from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Host = getEnvStr("HOST", cfg.Host)
	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.GRPCPort = getEnvInt("GRPC_PORT", cfg.GRPCPort)
	cfg.Profile = getEnvStr("PROFILE", cfg.Profile)
	cfg.LogLevel = strings.ToLower(getEnvStr("LOG_LEVEL", cfg.LogLevel))
	cfg.Preset = strings.ToLower(getEnvStr("PRESET", cfg.Preset))
	cfg.ChunkDelayMs = getEnvInt("CHUNK_DELAY_MS", cfg.ChunkDelayMs)
	cfg.DonePayload = getBool("DONE_PAYLOAD", cfg.DonePayload)
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.Models = getEnvList("MODELS", cfg.Models)
	cfg.ErrorRate = getEnvFloat("ERROR_RATE", cfg.ErrorRate)
	cfg.ErrorMode = strings.ToLower(getEnvStr("ERROR_MODE", cfg.ErrorMode))
	cfg.MetricsEnabled = getBool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.ShutdownTimeoutMs = getEnvInt("SHUTDOWN_TIMEOUT_MS", cfg.ShutdownTimeoutMs)
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port %d", c.GRPCPort)
	}
	if c.GRPCPort != 0 && c.GRPCPort == c.Port {
		return fmt.Errorf("grpc port %d collides with http port", c.GRPCPort)
	}
	if c.ChunkDelayMs < 0 {
		return fmt.Errorf("chunk delay must not be negative, got %d", c.ChunkDelayMs)
	}
	if c.ErrorRate < 0 || c.ErrorRate > 1 {
		return fmt.Errorf("error rate must be within [0,1], got %v", c.ErrorRate)
	}
	switch c.ErrorMode {
	case "mixed", "429", "500":
	default:
		return fmt.Errorf("unknown error mode %q", c.ErrorMode)
	}
	return nil
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GRPCPort)
}

func (c Config) ChunkDelay() time.Duration {
	return time.Duration(c.ChunkDelayMs) * time.Millisecond
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMs) * time.Millisecond
}
