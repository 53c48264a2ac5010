package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/learnerbot/internal/llm"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all learnerbot configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Context ContextConfig `yaml:"context"`
	LLM     LLMConfig     `yaml:"llm"`

	// AutosaveInterval retries unsaved progress in the background.
	// Zero disables the job.
	AutosaveInterval time.Duration `yaml:"autosave_interval"`
}

type StorageConfig struct {
	Backend string      `yaml:"backend"` // sqlite, redis, memory
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
}

// ContextConfig bounds the conversation history sent to the model.
type ContextConfig struct {
	MaxTurns int `yaml:"max_turns"`
	MaxChars int `yaml:"max_chars"`
}

// LLMConfig is the file-level subset of llm.LLMConfig. Credentials come
// from the environment only.
type LLMConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	Endpoint  string `yaml:"endpoint"`
	TimeoutMs int    `yaml:"timeout_ms"`
	LogCalls  bool   `yaml:"log_calls"`
}

// Dir returns the learnerbot home directory, ~/.learnerbot.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".learnerbot"), nil
}

// DefaultPath returns the config file location: LEARNERBOT_CONFIG or
// ~/.learnerbot/config.yaml.
func DefaultPath() string {
	if p := os.Getenv("LEARNERBOT_CONFIG"); p != "" {
		return p
	}
	dir, err := Dir()
	if err != nil {
		return "learnerbot.yaml"
	}
	return filepath.Join(dir, "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	dbPath := "learnerbot.db"
	if dir, err := Dir(); err == nil {
		dbPath = filepath.Join(dir, "learnerbot.db")
	}
	return &Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    dbPath,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "learnerbot"},
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Log:              LogConfig{Level: "info", Format: "console"},
		Context:          ContextConfig{MaxTurns: 40, MaxChars: 24000},
		AutosaveInterval: 30 * time.Second,
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (a missing file is not an error), then LEARNERBOT_* environment variables.
// A .env file in the working directory is read first without overriding
// variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LEARNERBOT_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("LEARNERBOT_DB"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("LEARNERBOT_REDIS_ADDR"); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := os.Getenv("LEARNERBOT_REDIS_PASSWORD"); v != "" {
		c.Storage.Redis.Password = v
	}
	if v := os.Getenv("LEARNERBOT_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Storage.Redis.DB = n
		}
	}
	if v := os.Getenv("LEARNERBOT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LEARNERBOT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LEARNERBOT_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("LEARNERBOT_CONTEXT_MAX_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Context.MaxTurns = n
		}
	}
	if v := os.Getenv("LEARNERBOT_CONTEXT_MAX_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Context.MaxChars = n
		}
	}
	if v := os.Getenv("LEARNERBOT_AUTOSAVE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.AutosaveInterval = d
		}
	}
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite backend")
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Context.MaxTurns < 0 || c.Context.MaxChars < 0 {
		return fmt.Errorf("context limits must not be negative")
	}
	if c.AutosaveInterval < 0 {
		return fmt.Errorf("autosave_interval must not be negative")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// LLMSettings merges the file settings over llm defaults, then applies the
// LLM environment variables.
func (c *Config) LLMSettings() llm.LLMConfig {
	cfg := llm.DefaultConfig()
	if c.LLM.Provider != "" {
		cfg.Provider = llm.Provider(c.LLM.Provider)
		if cfg.Provider == llm.ProviderGemini && c.LLM.Model == "" {
			cfg.Model = llm.DefaultGeminiModel
		}
	}
	if c.LLM.Model != "" {
		cfg.Model = c.LLM.Model
	}
	if c.LLM.Endpoint != "" {
		cfg.Endpoint = c.LLM.Endpoint
	}
	if c.LLM.TimeoutMs > 0 {
		cfg.TimeoutMs = c.LLM.TimeoutMs
	}
	cfg.LogCalls = c.LLM.LogCalls
	llm.ApplyEnv(&cfg)
	return cfg
}
