package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	require.NoError(t, err)
	assert.Equal(t, []string{"경제", "테크", "정치", "사회", "문화", "글로벌 이슈"}, cfg.Categories)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL())
	assert.Equal(t, "pulse_news_cache_v2", cfg.Cache.Key)
	assert.Equal(t, 3, cfg.MaxRetries())
	assert.Equal(t, 5*time.Second, cfg.RetryBaseDelay())
	require.NoError(t, validate(cfg))
}

func TestCacheTTL(t *testing.T) {
	cfg := &Config{Cache: CacheConfig{TTL: "15m"}}
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL())

	cfg.Cache.TTL = "invalid"
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL())
}

func TestMaxRetries(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 3, cfg.MaxRetries())

	zero := 0
	cfg.Retry.MaxRetries = &zero
	assert.Equal(t, 0, cfg.MaxRetries())
}

func TestAIKeyPrecedence(t *testing.T) {
	t.Setenv(EnvAIKey, "")
	t.Setenv(envGeminiKey, "")

	cfg := &Config{}
	assert.Empty(t, cfg.AIKey())

	t.Setenv(envGeminiKey, "gemini")
	assert.Equal(t, "gemini", cfg.AIKey())

	t.Setenv(EnvAIKey, "pulse")
	assert.Equal(t, "pulse", cfg.AIKey())

	cfg.AI = &AIConfig{APIKey: "file"}
	assert.Equal(t, "file", cfg.AIKey())
}

func TestAIConfigNeverNil(t *testing.T) {
	cfg := &Config{}
	assert.NotNil(t, cfg.AIConfig())
}

func TestTimeoutDuration(t *testing.T) {
	assert.Zero(t, (&AIConfig{}).TimeoutDuration())
	assert.Equal(t, 30*time.Second, (&AIConfig{Timeout: "30s"}).TimeoutDuration())
	assert.Zero(t, (&AIConfig{Timeout: "soon"}).TimeoutDuration())
}

func TestGetLanguage(t *testing.T) {
	assert.Equal(t, "한국어", (&Config{}).GetLanguage())
	assert.Equal(t, "English", (&Config{Language: "English"}).GetLanguage())
}

func TestLoadFromFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `categories:
  - Economy
  - Tech
language: English
cache:
  ttl: 15m
ai:
  model: gemini-custom
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"Economy", "Tech"}, cfg.Categories)
	assert.Equal(t, "English", cfg.Language)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL())
	assert.Equal(t, "gemini-custom", cfg.AI.Model)
	// Unset keys keep the embedded defaults.
	assert.Equal(t, "pulse_news_cache_v2", cfg.Cache.Key)
	assert.Equal(t, 3, cfg.MaxRetries())
}

func TestLoadNonexistentFallsBackToDefaults(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Len(t, cfg.Categories, 6)

	_, err = os.Stat(cfgPath)
	assert.NoError(t, err, "expected defaults to be written on first run")
}

func TestLoadRejectsInvalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("cache:\n  ttl: forever\n"), 0o644))

	_, err := Load(cfgPath)
	assert.Error(t, err)
}

func TestParseCategories(t *testing.T) {
	assert.Equal(t, []string{"경제", "테크"}, ParseCategories(" 경제, 테크 ,,"))
	assert.Nil(t, ParseCategories(""))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{Categories: []string{"a"}}, false},
		{"no categories", Config{}, true},
		{"blank category", Config{Categories: []string{"a", " "}}, true},
		{"duplicate category", Config{Categories: []string{"a", "a"}}, true},
		{"bad ttl", Config{Categories: []string{"a"}, Cache: CacheConfig{TTL: "-1m"}}, true},
		{"max retries at limit", Config{Categories: []string{"a"}, Retry: RetryConfig{MaxRetries: intPtr(MaxRetriesLimit)}}, false},
		{"max retries over limit", Config{Categories: []string{"a"}, Retry: RetryConfig{MaxRetries: intPtr(64)}}, true},
		{"negative max retries", Config{Categories: []string{"a"}, Retry: RetryConfig{MaxRetries: intPtr(-1)}}, true},
		{"bad base delay", Config{Categories: []string{"a"}, Retry: RetryConfig{BaseDelay: "x"}}, true},
		{"file base url", Config{Categories: []string{"a"}, AI: &AIConfig{BaseURL: "file:///etc/passwd"}}, true},
		{"http base url", Config{Categories: []string{"a"}, AI: &AIConfig{BaseURL: "http://localhost:8080"}}, false},
		{"bad timeout", Config{Categories: []string{"a"}, AI: &AIConfig{Timeout: "x"}}, true},
		{"negative rpm", Config{Categories: []string{"a"}, AI: &AIConfig{RequestsPerMinute: -1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func intPtr(n int) *int { return &n }
