package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port        int           `yaml:"port"`
	MetricsPort int           `yaml:"metrics_port"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type AIConfig struct {
	GeminiKey    string `yaml:"gemini_key"`
	GeminiURL    string `yaml:"gemini_url"`
	GeminiModel  string `yaml:"gemini_model"`
	OpenAIKey    string `yaml:"openai_key"`
	OpenAIModel  string `yaml:"openai_model"`
	MaxOutTokens int    `yaml:"max_out_tokens"`
	// SummaryTokenBudget caps the transcript size handed to the
	// summarizer; older turns are dropped first.
	SummaryTokenBudget int `yaml:"summary_token_budget"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type ChatConfig struct {
	// MaxMessageLen rejects oversized messages before classification.
	MaxMessageLen int `yaml:"max_message_len"`
	// MessagesPerMinute is the per-user send rate limit (0 disables).
	MessagesPerMinute int `yaml:"messages_per_minute"`
	// RealtimeWindowSessions is how many recent sessions feed the cheap
	// per-message trend refresh.
	RealtimeWindowSessions int `yaml:"realtime_window_sessions"`
	Workers                int `yaml:"workers"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Auth     AuthConfig     `yaml:"auth"`
	Chat     ChatConfig     `yaml:"chat"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev

	// secrets prefer the environment over the file
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIKey = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, MetricsPort: 9090, ReadTimeout: 15 * time.Second},
		Log:    LogConfig{Level: "info", Format: "json"},
		Redis:  RedisConfig{CacheTTL: 10 * time.Minute, LockTTL: 30 * time.Second},
		AI: AIConfig{
			GeminiModel:        "gemini-2.0-flash",
			OpenAIModel:        "gpt-4o-mini",
			MaxOutTokens:       1024,
			SummaryTokenBudget: 6000,
		},
		Auth: AuthConfig{TokenTTL: 24 * time.Hour},
		Chat: ChatConfig{
			MaxMessageLen:          4000,
			MessagesPerMinute:      30,
			RealtimeWindowSessions: 10,
			Workers:                8,
		},
	}
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Auth.JWTSecret == "" && !c.Runtime.Dev {
		return errors.New("auth.jwt_secret is required outside dev mode")
	}
	if c.Chat.MaxMessageLen <= 0 {
		return errors.New("chat.max_message_len must be positive")
	}
	if c.Chat.RealtimeWindowSessions <= 0 {
		return errors.New("chat.realtime_window_sessions must be positive")
	}
	return nil
}
