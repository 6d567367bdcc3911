package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the geodex service configuration.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	VectorStore  VectorStoreConfig  `yaml:"vector_store"`
	SpatialStore SpatialStoreConfig `yaml:"spatial_store"`
	LLM          LLMConfig          `yaml:"llm"`
	Geocoder     GeocoderConfig     `yaml:"geocoder"`
	Pipeline     PipelineConfig     `yaml:"pipeline"`
	Harvest      HarvestConfig      `yaml:"harvest"`
	Auth         AuthConfig         `yaml:"auth"`
	Index        IndexConfig        `yaml:"index"`
	Storage      StorageConfig      `yaml:"storage"`
	Logging      LoggingConfig      `yaml:"logging"`
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

// VectorStoreConfig holds vector index connection settings (Redis + RediSearch).
type VectorStoreConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SpatialStoreConfig holds PostGIS connection settings.
type SpatialStoreConfig struct {
	DSN             string `yaml:"dsn"`
	MaxConns        int32  `yaml:"max_conns"`
	MinConns        int32  `yaml:"min_conns"`
	MaxConnLifeSec  int    `yaml:"max_conn_lifetime_sec"`
	MaxConnIdleSec  int    `yaml:"max_conn_idle_sec"`
	ConnectTimeoutS int    `yaml:"connect_timeout_sec"`
}

// GeocoderConfig holds Nominatim client and retry settings.
type GeocoderConfig struct {
	BaseURL       string `yaml:"base_url"`
	UserAgent     string `yaml:"user_agent"`
	TimeoutSec    int    `yaml:"timeout_sec"`
	RetryAttempts int    `yaml:"retry_attempts"`
	BaseBackoffMs int    `yaml:"base_backoff_ms"`
	MaxBackoffMs  int    `yaml:"max_backoff_ms"`
}

// PipelineConfig holds query pipeline tunables. MinScore is read once at
// startup; the running orchestrator never sees a changed value.
type PipelineConfig struct {
	MinScore          float64 `yaml:"min_score"`
	DefaultMaxResults int     `yaml:"default_max_results"`
	MaxMaxResults     int     `yaml:"max_max_results"`
}

// HarvestConfig holds catalogue ingestion settings.
type HarvestConfig struct {
	BaseURL    string `yaml:"base_url"`
	Catalogue  string `yaml:"catalogue"`
	Language   string `yaml:"language"`
	Limit      int    `yaml:"limit"`
	BatchSize  int    `yaml:"batch_size"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// IndexConfig holds HNSW index settings.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// LLMConfig holds provider credentials and per-role model settings.
type LLMConfig struct {
	Providers   map[string]ProviderConfig `yaml:"providers"`
	Parser      RoleConfig                `yaml:"parser"`
	Synthesizer RoleConfig                `yaml:"synthesizer"`
	Embedding   VectorizerConfig          `yaml:"embedding"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit      int64   `yaml:"daily_token_limit"`       // 0 = unlimited
	MonthlyTokenLimit    int64   `yaml:"monthly_token_limit"`     // 0 = unlimited
	CostPerMillionTokens float64 `yaml:"cost_per_million_tokens"` // dashboard only
	Action               string  `yaml:"action"`                  // "reject" | "warn" (default)
}

// ProviderConfig holds LLM provider settings.
type ProviderConfig struct {
	APIKey  string       `yaml:"api_key"`
	BaseURL string       `yaml:"base_url"`
	Budget  BudgetConfig `yaml:"budget"`
}

// RoleConfig binds one completion role (intent parsing, answer synthesis) to
// a provider and model.
type RoleConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// VectorizerConfig holds embedding settings.
type VectorizerConfig struct {
	Provider            string `yaml:"provider"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the GEODEX_ENV variable,
// defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("GEODEX_ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Synthesis waits on two LLM round-trips; give slow completions room.
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.VectorStore.ReadinessTimeout <= 0 {
		c.VectorStore.ReadinessTimeout = 10
	}
	if c.Geocoder.TimeoutSec <= 0 {
		c.Geocoder.TimeoutSec = 10
	}
	if c.Geocoder.RetryAttempts <= 0 {
		c.Geocoder.RetryAttempts = 3
	}
	if c.Geocoder.BaseBackoffMs <= 0 {
		c.Geocoder.BaseBackoffMs = 500
	}
	if c.Geocoder.MaxBackoffMs <= 0 {
		c.Geocoder.MaxBackoffMs = 8000
	}
	if c.Pipeline.DefaultMaxResults <= 0 {
		c.Pipeline.DefaultMaxResults = 5
	}
	if c.Pipeline.MaxMaxResults <= 0 {
		c.Pipeline.MaxMaxResults = 50
	}
	if c.Harvest.Catalogue == "" {
		c.Harvest.Catalogue = "nipp"
	}
	if c.Harvest.Language == "" {
		c.Harvest.Language = "hr"
	}
	if c.Harvest.Limit <= 0 {
		c.Harvest.Limit = 1000
	}
	if c.Harvest.BatchSize <= 0 {
		c.Harvest.BatchSize = 100
	}
	if c.Harvest.TimeoutSec <= 0 {
		c.Harvest.TimeoutSec = 30
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 32
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 400
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "geodex:"
	}
	if c.LLM.Parser.Model == "" {
		c.LLM.Parser.Model = "gpt-4o-mini"
	}
	if c.LLM.Parser.Temperature == 0 {
		c.LLM.Parser.Temperature = 0.5
	}
	if c.LLM.Synthesizer.Model == "" {
		c.LLM.Synthesizer.Model = "gpt-3.5-turbo"
	}
	if c.LLM.Synthesizer.Temperature == 0 {
		c.LLM.Synthesizer.Temperature = 0.3
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.VectorStore.Addrs) == 0 {
		return fmt.Errorf("vector_store.addrs is required")
	}
	if c.SpatialStore.DSN == "" {
		return fmt.Errorf("spatial_store.dsn is required")
	}
	if c.Pipeline.MinScore < 0 || c.Pipeline.MinScore > 1 {
		return fmt.Errorf("pipeline.min_score must be within [0, 1], got %g", c.Pipeline.MinScore)
	}
	if c.Pipeline.DefaultMaxResults > c.Pipeline.MaxMaxResults {
		return fmt.Errorf("pipeline.default_max_results %d exceeds pipeline.max_max_results %d",
			c.Pipeline.DefaultMaxResults, c.Pipeline.MaxMaxResults)
	}
	for _, role := range []struct {
		name string
		cfg  RoleConfig
	}{{"llm.parser", c.LLM.Parser}, {"llm.synthesizer", c.LLM.Synthesizer}} {
		if role.cfg.Provider == "" {
			return fmt.Errorf("%s.provider is required", role.name)
		}
		if _, ok := c.LLM.Providers[role.cfg.Provider]; !ok {
			return fmt.Errorf("%s.provider %q is not declared under llm.providers", role.name, role.cfg.Provider)
		}
	}
	if c.LLM.Embedding.Provider == "" {
		return fmt.Errorf("llm.embedding.provider is required")
	}
	if _, ok := c.LLM.Providers[c.LLM.Embedding.Provider]; !ok {
		return fmt.Errorf("llm.embedding.provider %q is not declared under llm.providers", c.LLM.Embedding.Provider)
	}
	for name, p := range c.LLM.Providers {
		switch p.Budget.Action {
		case "", "warn", "reject":
			// ok
		default:
			return fmt.Errorf(
				"llm.providers.%s.budget.action must be \"warn\" or \"reject\", got %q",
				name, p.Budget.Action,
			)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
