package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config captures optional settings that are not part of the command line.
type Config struct {
	Influx    InfluxConfig    `yaml:"influx"`
	Query     QueryConfig     `yaml:"query"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// InfluxConfig controls how the /query endpoint is reached.
type InfluxConfig struct {
	Scheme   string `yaml:"scheme"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// QueryConfig controls the bond_slave lookback.
type QueryConfig struct {
	Window string `yaml:"window"`
}

// EvaluatorConfig bounds parallel primary lookups.
type EvaluatorConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// MetricsConfig controls the optional Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

var windowPattern = regexp.MustCompile(`^[0-9]+(ns|u|µ|ms|s|m|h|d|w)$`)

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CHECK_BOND_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if !windowPattern.MatchString(c.Query.Window) {
		return &ConfigError{Field: "query.window", Reason: fmt.Sprintf("invalid InfluxQL duration %q", c.Query.Window)}
	}
	switch c.Influx.Scheme {
	case "http", "https":
	default:
		return &ConfigError{Field: "influx.scheme", Reason: fmt.Sprintf("unsupported scheme %q", c.Influx.Scheme)}
	}
	if c.Evaluator.Concurrency < 1 {
		c.Evaluator.Concurrency = 1
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Influx:    InfluxConfig{Scheme: "http"},
		Query:     QueryConfig{Window: "1m"},
		Evaluator: EvaluatorConfig{Concurrency: 1},
		Logging:   LoggingConfig{Level: "warn", JSON: false},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHECK_BOND_INFLUX_SCHEME"); v != "" {
		cfg.Influx.Scheme = strings.ToLower(v)
	}
	if v := os.Getenv("CHECK_BOND_INFLUX_USERNAME"); v != "" {
		cfg.Influx.Username = v
	}
	if v := os.Getenv("CHECK_BOND_INFLUX_PASSWORD"); v != "" {
		cfg.Influx.Password = v
	}
	if v := os.Getenv("CHECK_BOND_QUERY_WINDOW"); v != "" {
		cfg.Query.Window = v
	}
	if v := os.Getenv("CHECK_BOND_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Evaluator.Concurrency = n
		}
	}
	if v := os.Getenv("CHECK_BOND_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CHECK_BOND_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("CHECK_BOND_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Textfile = v
	}
}
