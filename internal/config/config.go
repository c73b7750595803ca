// Package config loads and normalizes the xenovate YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPort is the listen port used when the config omits one.
const DefaultPort = 8080

// Config is the root configuration document.
type Config struct {
	// Host is the listen address. Empty binds all interfaces.
	Host string `yaml:"host,omitempty" json:"host,omitempty"`

	// Port is the HTTP listen port.
	Port int `yaml:"port" json:"port"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug" json:"debug"`

	// LoggingToFile mirrors log output to a rotating file under LogDir.
	LoggingToFile bool `yaml:"logging-to-file" json:"logging-to-file"`

	// LogDir is where rotated log files are written.
	LogDir string `yaml:"log-dir,omitempty" json:"log-dir,omitempty"`

	// APIKeys gate the HTTP surface when non-empty.
	APIKeys []string `yaml:"api-keys,omitempty" json:"api-keys,omitempty"`

	Upstream       Upstream         `yaml:"upstream" json:"upstream"`
	Models         []ModelCandidate `yaml:"models" json:"models"`
	Generation     Generation       `yaml:"generation" json:"generation"`
	CircuitBreaker CircuitBreaker   `yaml:"circuit-breaker" json:"circuit-breaker"`
	Usage          UsageConfig      `yaml:"usage" json:"usage"`
}

// Generation holds the sampling parameters sent with every call.
type Generation struct {
	Temperature     float32 `yaml:"temperature" json:"temperature"`
	TopP            float32 `yaml:"top-p" json:"top-p"`
	TopK            float32 `yaml:"top-k" json:"top-k"`
	MaxOutputTokens int32   `yaml:"max-output-tokens" json:"max-output-tokens"`
}

// CircuitBreaker configures the per-model breaker that guards against
// repeated non-quota failures.
type CircuitBreaker struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	FailureThreshold uint32 `yaml:"failure-threshold" json:"failure-threshold"`
	MinRequests      uint32 `yaml:"min-requests" json:"min-requests"`
	// Timeout is how long an open breaker stays open, as a Go duration string.
	Timeout string `yaml:"timeout" json:"timeout"`
}

// UsageConfig configures the persistent usage ledger.
type UsageConfig struct {
	// DSN selects the backend: sqlite:///path/to.db or postgres://...
	// Empty disables persistence.
	DSN           string `yaml:"dsn,omitempty" json:"dsn,omitempty"`
	BatchSize     int    `yaml:"batch-size,omitempty" json:"batch-size,omitempty"`
	FlushInterval string `yaml:"flush-interval,omitempty" json:"flush-interval,omitempty"`
	RetentionDays int    `yaml:"retention-days,omitempty" json:"retention-days,omitempty"`
}

// NewDefaultConfig returns a config populated with the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Port:   DefaultPort,
		LogDir: "logs",
		Upstream: Upstream{
			Type:    UpstreamGemini,
			Timeout: "120s",
		},
		Models: DefaultModels(),
		Generation: Generation{
			Temperature:     0.7,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 8192,
		},
		CircuitBreaker: CircuitBreaker{
			Enabled:          true,
			FailureThreshold: 5,
			MinRequests:      5,
			Timeout:          "30s",
		},
		Usage: UsageConfig{
			BatchSize:     100,
			FlushInterval: "5s",
			RetentionDays: 30,
		},
	}
}

// LoadConfig reads and parses the config file at path. A missing file is an error.
func LoadConfig(path string) (*Config, error) {
	return LoadConfigOptional(path, false)
}

// LoadConfigOptional reads the config at path. When optional is true a
// missing file yields the defaults instead of an error.
func LoadConfigOptional(path string, optional bool) (*Config, error) {
	cfg := NewDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize trims string fields, drops blank entries and fills zero values
// with defaults.
func (cfg *Config) Normalize() {
	if cfg == nil {
		return
	}
	defaults := NewDefaultConfig()

	cfg.Host = strings.TrimSpace(cfg.Host)
	if cfg.Port <= 0 {
		cfg.Port = defaults.Port
	}
	if cfg.LogDir = strings.TrimSpace(cfg.LogDir); cfg.LogDir == "" {
		cfg.LogDir = defaults.LogDir
	}

	keys := cfg.APIKeys[:0]
	for _, k := range cfg.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	cfg.APIKeys = keys

	cfg.Upstream.normalize()
	cfg.Models = SanitizeModels(cfg.Models)
	if len(cfg.Models) == 0 {
		cfg.Models = defaults.Models
	}

	if cfg.Generation.MaxOutputTokens <= 0 {
		cfg.Generation.MaxOutputTokens = defaults.Generation.MaxOutputTokens
	}
	if cfg.CircuitBreaker.FailureThreshold == 0 {
		cfg.CircuitBreaker.FailureThreshold = defaults.CircuitBreaker.FailureThreshold
	}
	if cfg.CircuitBreaker.Timeout == "" {
		cfg.CircuitBreaker.Timeout = defaults.CircuitBreaker.Timeout
	}
	if cfg.Usage.BatchSize <= 0 {
		cfg.Usage.BatchSize = defaults.Usage.BatchSize
	}
	if cfg.Usage.FlushInterval == "" {
		cfg.Usage.FlushInterval = defaults.Usage.FlushInterval
	}
	if cfg.Usage.RetentionDays <= 0 {
		cfg.Usage.RetentionDays = defaults.Usage.RetentionDays
	}
	cfg.Usage.DSN = strings.TrimSpace(cfg.Usage.DSN)
}

// Validate reports the first structural problem in cfg. A missing credential
// is not an error here: the service reports it per request.
func (cfg *Config) Validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{Field: "port", Message: fmt.Sprintf("out of range: %d", cfg.Port)}
	}
	if err := cfg.Upstream.Validate(); err != nil {
		return err
	}
	if g := cfg.Generation; g.Temperature < 0 || g.TopP < 0 || g.TopP > 1 || g.TopK < 0 {
		return &ValidationError{Field: "generation", Message: "temperature, top-p and top-k must be non-negative and top-p at most 1"}
	}
	if _, err := time.ParseDuration(cfg.CircuitBreaker.Timeout); err != nil {
		return &ValidationError{Field: "circuit-breaker.timeout", Message: err.Error()}
	}
	if _, err := time.ParseDuration(cfg.Usage.FlushInterval); err != nil {
		return &ValidationError{Field: "usage.flush-interval", Message: err.Error()}
	}
	if cfg.Usage.DSN != "" {
		if _, err := ParseDSN(cfg.Usage.DSN); err != nil {
			return &ValidationError{Field: "usage.dsn", Message: err.Error()}
		}
	}
	return nil
}

// CredentialConfigured reports whether an upstream credential is present.
func (cfg *Config) CredentialConfigured() bool {
	return cfg != nil && strings.TrimSpace(cfg.Upstream.APIKey) != ""
}

// BreakerTimeout returns the parsed breaker open-state duration.
func (cfg *Config) BreakerTimeout() time.Duration {
	d, err := time.ParseDuration(cfg.CircuitBreaker.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// FlushInterval returns the parsed usage flush interval.
func (cfg *Config) FlushInterval() time.Duration {
	d, err := time.ParseDuration(cfg.Usage.FlushInterval)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// ValidationError describes an invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "config error: " + e.Field + ": " + e.Message
}
