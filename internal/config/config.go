// Package config handles application configuration from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig    `yaml:"server"`
	Upload     UploadConfig    `yaml:"upload"`
	Auth       AuthConfig      `yaml:"auth"`
	RateLimits RateLimitConfig `yaml:"rate_limits"`
	Generator  GeneratorConfig `yaml:"generator"`
	Scoring    ScoringConfig   `yaml:"scoring"`
	Logging    LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port            int    `yaml:"port"`
	EnableUI        bool   `yaml:"enable_ui"`
	MaxConnections  int    `yaml:"max_connections"` // 0 = unlimited
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

type AuthConfig struct {
	APIKeys []APIKeyConfig `yaml:"api_keys"`
}

type APIKeyConfig struct {
	Name string `yaml:"name"`
	Key  string `yaml:"key"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"default_requests_per_minute"`
}

type GeneratorConfig struct {
	FontPath          string  `yaml:"font_path"` // empty = embedded Go Regular
	FontSize          float64 `yaml:"font_size"`
	WatermarkFontSize float64 `yaml:"watermark_font_size"`
}

type ScoringConfig struct {
	Seed uint64 `yaml:"seed"` // 0 = independent random source per call
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			EnableUI:        true,
			MaxConnections:  256,
			ReadTimeout:     "15s",
			WriteTimeout:    "15s",
			ShutdownTimeout: "5s",
		},
		Upload: UploadConfig{
			MaxBytes: 20 << 20,
		},
		RateLimits: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Generator: GeneratorConfig{
			FontSize:          30,
			WatermarkFontSize: 40,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run init-config to create one)", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Interpolate environment variables
	content := interpolateEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// GenerateSample creates a sample configuration file.
func GenerateSample(path string) error {
	sample := `# certverify configuration

server:
  port: 8080
  enable_ui: true
  max_connections: 256
  read_timeout: 15s
  write_timeout: 15s
  shutdown_timeout: 5s

upload:
  max_bytes: 20971520

# Leave api_keys empty to disable authentication.
auth:
  api_keys:
    # - name: demo
    #   key: ${CERTVERIFY_API_KEY}

rate_limits:
  default_requests_per_minute: 60

generator:
  # font_path: /usr/share/fonts/truetype/dejavu/DejaVuSans.ttf
  font_size: 30
  watermark_font_size: 40

scoring:
  seed: 0  # non-zero makes every analysis reproducible

logging:
  level: info  # debug, info, warn, error
  format: json # json or text
`
	return os.WriteFile(path, []byte(sample), 0644)
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.MaxConnections < 0 {
		return fmt.Errorf("invalid max_connections: %d", c.Server.MaxConnections)
	}

	for name, v := range map[string]string{
		"read_timeout":     c.Server.ReadTimeout,
		"write_timeout":    c.Server.WriteTimeout,
		"shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("invalid upload max_bytes: %d", c.Upload.MaxBytes)
	}

	if c.RateLimits.RequestsPerMinute < 1 {
		return fmt.Errorf("invalid requests per minute: %d", c.RateLimits.RequestsPerMinute)
	}

	seen := make(map[string]bool)
	for i, k := range c.Auth.APIKeys {
		if k.Key == "" || strings.HasPrefix(k.Key, "${") {
			return fmt.Errorf("api key %d (%s) is empty or unresolved", i, k.Name)
		}
		if seen[k.Key] {
			return fmt.Errorf("duplicate api key for %s", k.Name)
		}
		seen[k.Key] = true
	}

	if c.Generator.FontSize <= 0 || c.Generator.WatermarkFontSize <= 0 {
		return fmt.Errorf("font sizes must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("unsupported log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}

	return nil
}

// ReadTimeoutDuration returns the parsed read timeout.
func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	return parseDuration(s.ReadTimeout)
}

// WriteTimeoutDuration returns the parsed write timeout.
func (s ServerConfig) WriteTimeoutDuration() time.Duration {
	return parseDuration(s.WriteTimeout)
}

// ShutdownTimeoutDuration returns the parsed shutdown timeout.
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return parseDuration(s.ShutdownTimeout)
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

func parseDuration(v string) time.Duration {
	d, _ := time.ParseDuration(v)
	return d
}

// interpolateEnvVars replaces ${VAR_NAME} with environment variable values.
func interpolateEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match // Keep original if not set
	})
}
