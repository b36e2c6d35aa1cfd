package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const (
	EnvAIKey     = "PULSE_AI_KEY"
	envGeminiKey = "GEMINI_API_KEY"
	EnvLogLevel  = "PULSE_LOG"

	// MaxRetriesLimit keeps the doubling backoff far from overflow.
	MaxRetriesLimit = 10
)

type AIConfig struct {
	APIKey            string `yaml:"api_key"`
	Model             string `yaml:"model"`
	BaseURL           string `yaml:"base_url,omitempty"`
	Timeout           string `yaml:"timeout,omitempty"`
	RequestsPerMinute int    `yaml:"requests_per_minute,omitempty"`
}

// TimeoutDuration returns the HTTP client timeout; zero leaves it to the transport.
func (a *AIConfig) TimeoutDuration() time.Duration {
	if a == nil || a.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0
	}
	return d
}

type CacheConfig struct {
	TTL string `yaml:"ttl"`
	Key string `yaml:"key"`
}

type RetryConfig struct {
	MaxRetries *int   `yaml:"max_retries,omitempty"`
	BaseDelay  string `yaml:"base_delay,omitempty"`
}

type Config struct {
	Categories []string    `yaml:"categories"`
	Language   string      `yaml:"language"`
	LogLevel   string      `yaml:"log_level,omitempty"`
	Cache      CacheConfig `yaml:"cache"`
	Retry      RetryConfig `yaml:"retry,omitempty"`
	AI         *AIConfig   `yaml:"ai,omitempty"`
}

// AIKey returns the resolved API key (config, then env vars).
func (c *Config) AIKey() string {
	if c.AI != nil && c.AI.APIKey != "" {
		return c.AI.APIKey
	}
	if key := os.Getenv(EnvAIKey); key != "" {
		return key
	}
	return os.Getenv(envGeminiKey)
}

// AIConfig never returns nil so callers can pass it straight to ai.New.
func (c *Config) AIConfig() *AIConfig {
	if c.AI == nil {
		return &AIConfig{}
	}
	return c.AI
}

func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// MaxRetries defaults to 3 when unset.
func (c *Config) MaxRetries() int {
	if c.Retry.MaxRetries == nil || *c.Retry.MaxRetries < 0 {
		return 3
	}
	return *c.Retry.MaxRetries
}

func (c *Config) RetryBaseDelay() time.Duration {
	d, err := time.ParseDuration(c.Retry.BaseDelay)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// GetLanguage returns the output language, defaulting to Korean.
func (c *Config) GetLanguage() string {
	if c.Language == "" {
		return "한국어"
	}
	return c.Language
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "pulse", "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, "pulse", "pulse.db")
}

// LogPath is where the TUI writes its log, since stderr belongs to the screen.
func LogPath() string {
	return filepath.Join(xdg.StateHome, "pulse", "pulse.log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// First run: best-effort copy of the defaults for the user to edit.
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := *defaults
	cfg.AI = nil
	if defaults.AI != nil {
		ai := *defaults.AI
		cfg.AI = &ai
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o600)
}

// ParseCategories splits a comma-separated flag value.
func ParseCategories(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func ValidateCategories(categories []string) error {
	if len(categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	seen := map[string]bool{}
	for i, c := range categories {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("category %d: name is required", i)
		}
		if seen[c] {
			return fmt.Errorf("category %q listed twice", c)
		}
		seen[c] = true
	}
	return nil
}

func validate(cfg *Config) error {
	if err := ValidateCategories(cfg.Categories); err != nil {
		return err
	}
	if cfg.Cache.TTL != "" {
		if d, err := time.ParseDuration(cfg.Cache.TTL); err != nil || d <= 0 {
			return fmt.Errorf("cache.ttl: invalid duration %q", cfg.Cache.TTL)
		}
	}
	if n := cfg.Retry.MaxRetries; n != nil && (*n < 0 || *n > MaxRetriesLimit) {
		return fmt.Errorf("retry.max_retries: must be between 0 and %d, got %d", MaxRetriesLimit, *n)
	}
	if cfg.Retry.BaseDelay != "" {
		if _, err := time.ParseDuration(cfg.Retry.BaseDelay); err != nil {
			return fmt.Errorf("retry.base_delay: %w", err)
		}
	}
	if cfg.AI != nil {
		if cfg.AI.BaseURL != "" {
			u, err := url.Parse(cfg.AI.BaseURL)
			if err != nil {
				return fmt.Errorf("ai.base_url: %w", err)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return fmt.Errorf("ai.base_url: scheme must be http or https, got %q", u.Scheme)
			}
		}
		if cfg.AI.Timeout != "" {
			if _, err := time.ParseDuration(cfg.AI.Timeout); err != nil {
				return fmt.Errorf("ai.timeout: %w", err)
			}
		}
		if cfg.AI.RequestsPerMinute < 0 {
			return fmt.Errorf("ai.requests_per_minute must not be negative")
		}
	}
	return nil
}
