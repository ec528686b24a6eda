// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AIConfig struct {
	Provider         string        `yaml:"provider"` // openai | gemini
	OpenAIKey        string        `yaml:"openai_key"`
	OpenAIBaseURL    string        `yaml:"openai_base_url"`
	GeminiKey        string        `yaml:"gemini_key"`
	GeminiURL        string        `yaml:"gemini_url"`
	DefaultModel     string        `yaml:"default_model"`
	MaxTokens        int           `yaml:"max_tokens"`
	Temperature      float64       `yaml:"temperature"`
	PresencePenalty  float64       `yaml:"presence_penalty"`
	FrequencyPenalty float64       `yaml:"frequency_penalty"`
	Timeout          time.Duration `yaml:"timeout"`
	ConcurrentLimit  int           `yaml:"concurrent_limit"` // max concurrent AI calls
	PersonaFile      string        `yaml:"persona_file"`     // empty: embedded default persona
}

type ChatConfig struct {
	Locale          string `yaml:"locale"`
	HistoryWindow   int    `yaml:"history_window"`   // turns sent upstream
	RetentionWindow int    `yaml:"retention_window"` // turns kept in memory
	AutosaveEvery   int    `yaml:"autosave_every"`   // snapshot when log length is a multiple
	FallbackSeed    int64  `yaml:"fallback_seed"`    // 0: seeded from the clock
}

type StorageConfig struct {
	Dir     string `yaml:"dir"`
	CSVName string `yaml:"csv_name"`
}

type RedisConfig struct {
	URL        string        `yaml:"url"` // empty disables turn rate limiting
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	TurnLimit  int           `yaml:"turn_limit"`
	TurnWindow time.Duration `yaml:"turn_window"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"` // empty disables the transcript archive
	MaxConns int    `yaml:"max_conns"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	AI       AIConfig       `yaml:"ai"`
	Chat     ChatConfig     `yaml:"chat"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Metrics  MetricsConfig  `yaml:"metrics"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path (a missing file means all defaults),
// loads .env into the process environment and applies environment overrides.
// A missing API key is not an error: it is reported per request.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// .env is optional; existing environment variables win.
	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiKey = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	// Must outlive the upstream timeout so fallbacks still reach the client.
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = 10 << 20
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.DefaultModel == "" {
		if cfg.AI.Provider == "gemini" {
			cfg.AI.DefaultModel = "gemini-2.0-flash"
		} else {
			cfg.AI.DefaultModel = "gpt-4o-mini"
		}
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 1000
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.8
	}
	if cfg.AI.PresencePenalty == 0 {
		cfg.AI.PresencePenalty = 0.6
	}
	if cfg.AI.FrequencyPenalty == 0 {
		cfg.AI.FrequencyPenalty = 0.3
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 30 * time.Second
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}

	if cfg.Chat.Locale == "" {
		cfg.Chat.Locale = "en"
	}
	if cfg.Chat.HistoryWindow <= 0 {
		cfg.Chat.HistoryWindow = 10
	}
	if cfg.Chat.RetentionWindow <= 0 {
		cfg.Chat.RetentionWindow = 20
	}
	if cfg.Chat.AutosaveEvery <= 0 {
		cfg.Chat.AutosaveEvery = 4
	}

	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "conversations"
	}
	if cfg.Storage.CSVName == "" {
		cfg.Storage.CSVName = "all_conversations.csv"
	}

	if cfg.Redis.TurnLimit <= 0 {
		cfg.Redis.TurnLimit = 30
	}
	cfg.Redis.TurnWindow = normalizeWindow(cfg.Redis.TurnWindow)

	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 4
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.AI.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("ai.provider must be openai or gemini, got %q", c.AI.Provider)
	}
	if c.Chat.HistoryWindow > c.Chat.RetentionWindow {
		return errors.New("chat.history_window must not exceed chat.retention_window")
	}
	return nil
}

// APIKey returns the credential of the selected provider.
func (c *AIConfig) APIKey() string {
	if c.Provider == "gemini" {
		return c.GeminiKey
	}
	return c.OpenAIKey
}

func normalizeWindow(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Minute
	}
	return d
}
