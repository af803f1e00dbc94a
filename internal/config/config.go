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
	Port          int           `yaml:"port"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SecureCookie  bool          `yaml:"secure_cookie"`
	CookieDomain  string        `yaml:"cookie_domain"`
	Language      string        `yaml:"language"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite | postgres
	URL    string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	Provider        string        `yaml:"provider"` // openai | gemini | noop; empty picks the first configured key
	OpenAIKey       string        `yaml:"openai_key"`
	OpenAIBaseURL   string        `yaml:"openai_base_url"`
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	DefaultModel    string        `yaml:"default_model"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent AI calls
	RequestTimeout  time.Duration `yaml:"request_timeout"`  // 0 disables
	MaxOutputTokens int           `yaml:"max_output_tokens"`
}

type JobsConfig struct {
	Backend         string        `yaml:"backend"` // memory | redis
	Workers         int           `yaml:"workers"`
	QueueSize       int           `yaml:"queue_size"`
	TTL             time.Duration `yaml:"ttl"`
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	MaxPayloadChars int           `yaml:"max_payload_chars"`
	CharsPerToken   float64       `yaml:"chars_per_token"`
	BindToSession   bool          `yaml:"bind_to_session"`
}

type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

type RateLimitConfig struct {
	ProcessPerMinute int `yaml:"process_per_minute"` // 0 disables
}

type SecurityConfig struct {
	BcryptCost     int    `yaml:"bcrypt_cost"`
	PasswordPepper string `yaml:"password_pepper"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	AI        AIConfig        `yaml:"ai"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Fetch     FetchConfig     `yaml:"fetch"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Security  SecurityConfig  `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

const (
	DefaultMaxPayloadChars = 4000
	DefaultCharsPerToken   = 4.5
	devSessionSecret       = "dev-session-secret-change-in-production"
)

// LoadConfig reads the YAML file at path (a missing file is fine; defaults apply),
// loads .env if present, applies environment overrides, then defaults and validation.
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
			// env-only deployment
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	_ = godotenv.Load()
	applyEnv(&cfg)

	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setStr := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setStr(&cfg.AI.OpenAIKey, "OPENAI_API_KEY")
	setStr(&cfg.AI.GeminiKey, "GEMINI_API_KEY")
	setStr(&cfg.AI.DefaultModel, "AI_MODEL")
	setStr(&cfg.AI.Provider, "AI_PROVIDER")
	setStr(&cfg.Database.URL, "DATABASE_URL")
	setStr(&cfg.Database.Driver, "DATABASE_DRIVER")
	setStr(&cfg.Redis.URL, "REDIS_URL")
	setStr(&cfg.Server.SessionSecret, "SESSION_SECRET")
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 10000
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.SessionTTL <= 0 {
		c.Server.SessionTTL = 24 * time.Hour
	}
	if c.Server.Language == "" {
		c.Server.Language = "en"
	}
	if c.Server.SessionSecret == "" && c.Runtime.Dev {
		c.Server.SessionSecret = devSessionSecret
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.URL == "" && c.Database.Driver == "sqlite" {
		c.Database.URL = "users.db"
	}

	if c.AI.Provider == "" {
		switch {
		case c.AI.OpenAIKey != "":
			c.AI.Provider = "openai"
		case c.AI.GeminiKey != "":
			c.AI.Provider = "gemini"
		case c.Runtime.Dev:
			c.AI.Provider = "noop"
		}
	}
	c.AI.Provider = strings.ToLower(c.AI.Provider)
	if c.AI.DefaultModel == "" {
		if c.AI.Provider == "gemini" {
			c.AI.DefaultModel = "gemini-2.0-flash"
		} else {
			c.AI.DefaultModel = "gpt-4o-mini"
		}
	}
	if c.AI.ConcurrentLimit <= 0 {
		c.AI.ConcurrentLimit = 8
	}
	if c.AI.RequestTimeout < 0 {
		c.AI.RequestTimeout = 0
	}
	if c.AI.MaxOutputTokens <= 0 {
		c.AI.MaxOutputTokens = 512
	}

	if c.Jobs.Backend == "" {
		c.Jobs.Backend = "memory"
	}
	if c.Jobs.Workers <= 0 {
		c.Jobs.Workers = 4
	}
	if c.Jobs.QueueSize <= 0 {
		c.Jobs.QueueSize = c.Jobs.Workers * 16
	}
	if c.Jobs.TTL <= 0 {
		c.Jobs.TTL = 15 * time.Minute
	}
	if c.Jobs.SweepInterval <= 0 {
		c.Jobs.SweepInterval = time.Minute
	}
	if c.Jobs.MaxPayloadChars <= 0 {
		c.Jobs.MaxPayloadChars = DefaultMaxPayloadChars
	}
	if c.Jobs.CharsPerToken <= 0 {
		c.Jobs.CharsPerToken = DefaultCharsPerToken
	}

	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 20 * time.Second
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "Mozilla/5.0 (compatible; PageSummarizer/1.0)"
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		c.Fetch.MaxBodyBytes = 5 << 20
	}

	if c.Security.BcryptCost == 0 {
		c.Security.BcryptCost = 12
	}
}

// Validate checks the fields that have no sensible default.
func (c *Config) Validate() error {
	if c.Server.SessionSecret == "" {
		return errors.New("server.session_secret (or SESSION_SECRET) is required")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	switch c.Jobs.Backend {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("redis.url is required when jobs.backend is redis")
		}
	default:
		return fmt.Errorf("jobs.backend must be memory or redis, got %q", c.Jobs.Backend)
	}
	switch c.AI.Provider {
	case "openai":
		if c.AI.OpenAIKey == "" {
			return errors.New("ai.openai_key (or OPENAI_API_KEY) is required for provider openai")
		}
	case "gemini":
		if c.AI.GeminiKey == "" {
			return errors.New("ai.gemini_key (or GEMINI_API_KEY) is required for provider gemini")
		}
	case "multi":
		if c.AI.OpenAIKey == "" && c.AI.GeminiKey == "" {
			return errors.New("provider multi needs at least one of ai.openai_key or ai.gemini_key")
		}
	case "noop":
	case "":
		return errors.New("no AI provider configured: set ai.openai_key or ai.gemini_key")
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	if c.RateLimit.ProcessPerMinute > 0 && c.Redis.URL == "" {
		return errors.New("rate_limit.process_per_minute requires redis.url")
	}
	return nil
}
