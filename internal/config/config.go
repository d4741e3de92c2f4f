package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config holds the giftsearch service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Index     IndexConfig     `yaml:"index"`
	Search    SearchConfig    `yaml:"search"`
	Preview   PreviewConfig   `yaml:"preview"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver            string   `yaml:"driver"` // redis
	Addrs             []string `yaml:"addrs"`
	Password          string   `yaml:"password"`
	ReadinessTimeout  int      `yaml:"readiness_timeout_sec"`
	ConnectTimeoutSec int      `yaml:"connect_timeout_sec"`
}

// IndexConfig holds index schema, document source and indexing settings.
type IndexConfig struct {
	HNSWM             int      `yaml:"hnsw_m"`
	HNSWEFConstruct   int      `yaml:"hnsw_ef_construction"`
	Collections       []string `yaml:"collections"`
	DocumentsPath     string   `yaml:"documents_path"`
	Rebuild           bool     `yaml:"rebuild"`        // drop and reindex every collection before serving
	IndexOnStart      bool     `yaml:"index_on_start"` // index without dropping
	CollectionWorkers int      `yaml:"collection_workers"`
	DocumentWorkers   int      `yaml:"document_workers"`
	Include           []string `yaml:"include"`
	Exclude           []string `yaml:"exclude"`
}

// SearchConfig holds result budgets and deadlines.
type SearchConfig struct {
	MaxHits          int `yaml:"max_hits"`
	PrimaryBudget    int `yaml:"primary_budget"`
	SpilloverBudget  int `yaml:"spillover_budget"` // negative disables spillover
	FanoutWorkers    int `yaml:"fanout_workers"`   // 0 = all collections at once
	RequestTimeoutMs int `yaml:"request_timeout_ms"`
}

// PreviewConfig holds result formatting settings.
type PreviewConfig struct {
	Length       int    `yaml:"length"`
	URLTemplate  string `yaml:"url_template"`
	OriginalFrom string `yaml:"original_from"`
	OriginalTo   string `yaml:"original_to"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding settings.
type EmbeddingConfig struct {
	Providers  map[string]ProviderConfig `yaml:"providers"`
	Vectorizer VectorizerConfig          `yaml:"vectorizer"`
	Cache      CacheConfig               `yaml:"cache"`
}

// ProviderConfig holds embedding provider settings.
type ProviderConfig struct {
	APIKey     string          `yaml:"api_key"`
	BaseURL    string          `yaml:"base_url"`
	TimeoutSec int             `yaml:"timeout_sec"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig throttles calls to a provider.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = unlimited
	Burst             int     `yaml:"burst"`
}

// VectorizerConfig holds vectorizer settings.
type VectorizerConfig struct {
	Provider            string `yaml:"provider"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"` // 0 = no expiry
}

// Load reads config/{env}.yaml (or the file named by CONFIG_PATH) and
// returns the parsed, defaulted and validated configuration.
func Load(env string) (Config, error) {
	path := locate(env)
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse expands ${VAR} and ${VAR:-default} references, decodes the YAML,
// then applies overrides, defaults and validation in that order.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate: %w", err)
	}
	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("DOCUMENTS_PATH"); p != "" {
		c.Index.DocumentsPath = p
	}
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.ConnectTimeoutSec <= 0 {
		c.Database.ConnectTimeoutSec = 10
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if len(c.Index.Collections) == 0 {
		c.Index.Collections = []string{"GB", "BE", "MX"}
	}
	if c.Index.DocumentsPath == "" {
		c.Index.DocumentsPath = "./bitrefill_keywords"
	}
	if c.Index.CollectionWorkers <= 0 {
		c.Index.CollectionWorkers = len(c.Index.Collections)
	}
	if c.Index.DocumentWorkers <= 0 {
		c.Index.DocumentWorkers = 4
	}
	if c.Search.MaxHits <= 0 {
		c.Search.MaxHits = 10
	}
	if c.Search.PrimaryBudget <= 0 {
		c.Search.PrimaryBudget = 8
	}
	if c.Search.SpilloverBudget == 0 {
		c.Search.SpilloverBudget = 2
	}
	if c.Preview.Length <= 0 {
		c.Preview.Length = 600
	}
	if c.Preview.URLTemplate == "" {
		c.Preview.URLTemplate = "https://www.bitrefill.com/%s/en/gift-cards/%s"
	}
	if c.Preview.OriginalFrom == "" && c.Preview.OriginalTo == "" {
		c.Preview.OriginalFrom = "bitrefill_keywords"
		c.Preview.OriginalTo = "bitrefill_parsed"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "giftsearch:"
	}
	if c.Embedding.Vectorizer.Provider == "" && len(c.Embedding.Providers) == 1 {
		for name := range c.Embedding.Providers {
			c.Embedding.Vectorizer.Provider = name
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.Driver != "redis" {
		return fmt.Errorf("database.driver must be \"redis\", got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateIndex(); err != nil {
		return err
	}
	if c.Search.PrimaryBudget > c.Search.MaxHits {
		return fmt.Errorf("search.primary_budget (%d) must not exceed search.max_hits (%d)",
			c.Search.PrimaryBudget, c.Search.MaxHits)
	}
	if n := strings.Count(c.Preview.URLTemplate, "%s"); n != 2 {
		return fmt.Errorf("preview.url_template must contain two %%s verbs, got %d", n)
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	v := c.Embedding.Vectorizer
	if v.Provider == "" {
		return fmt.Errorf("embedding.vectorizer.provider is required")
	}
	if _, ok := c.Embedding.Providers[v.Provider]; !ok {
		return fmt.Errorf("embedding.vectorizer.provider %q is not in embedding.providers", v.Provider)
	}
	if v.Model == "" {
		return fmt.Errorf("embedding.vectorizer.model is required")
	}
	if v.Dimensions <= 0 {
		return fmt.Errorf("embedding.vectorizer.dimensions must be positive, got %d", v.Dimensions)
	}
	for name, p := range c.Embedding.Providers {
		if p.RateLimit.RequestsPerSecond < 0 || p.RateLimit.Burst < 0 {
			return fmt.Errorf("embedding.providers.%s.rate_limit must not be negative", name)
		}
	}
	return nil
}

func (c *Config) validateIndex() error {
	seen := make([]string, 0, len(c.Index.Collections))
	for _, name := range c.Index.Collections {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("index.collections must not contain blank names")
		}
		if slices.Contains(seen, name) {
			return fmt.Errorf("index.collections contains %q twice", name)
		}
		seen = append(seen, name)
	}
	for _, p := range slices.Concat(c.Index.Include, c.Index.Exclude) {
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return fmt.Errorf("index: invalid glob pattern %q", p)
		}
	}
	return nil
}

// locate resolves the config file: CONFIG_PATH wins, then ./config, then
// the config directory next to this module's sources (go test from any
// package). A missing file surfaces later as a read error on ./config.
func locate(env string) string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}

	name := env + ".yaml"
	candidates := []string{filepath.Join("config", name)}
	if _, src, _, ok := runtime.Caller(0); ok {
		root := filepath.Join(filepath.Dir(src), "..", "..")
		candidates = append(candidates, filepath.Join(root, "config", name))
	}
	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return c
		}
	}
	return candidates[0]
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// expandEnvVars substitutes ${VAR} and ${VAR:-default}. An unset or empty
// VAR without a default becomes the empty string.
func expandEnvVars(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		m := envRef.FindSubmatch(ref)
		if v := os.Getenv(string(m[1])); v != "" {
			return []byte(v)
		}
		return m[2]
	})
}
