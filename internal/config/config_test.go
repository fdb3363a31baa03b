package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/miradorstack/check-bond/internal/utils"
)

func lookupFrom(values map[string]string) Lookup {
	return func(name string) (string, bool) {
		v, ok := values[name]
		return v, ok
	}
}

func TestResolveReportsFirstMissing(t *testing.T) {
	_, err := Resolve(lookupFrom(map[string]string{
		FlagInfluxHost:   "influx",
		FlagInfluxDBName: "telegraf",
	}))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cfgErr.Field != FlagInfluxPort {
		t.Fatalf("expected first missing field %q, got %q", FlagInfluxPort, cfgErr.Field)
	}
	if err.Error() != "Missing required cmdlint arg: --influxport" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, utils.ErrConfig) {
		t.Fatalf("expected errors.Is to match ErrConfig")
	}
}

func TestResolveMissingHostname(t *testing.T) {
	_, err := Resolve(lookupFrom(map[string]string{
		FlagInfluxHost:   "influx",
		FlagInfluxPort:   "8086",
		FlagInfluxDBName: "telegraf",
	}))
	if err == nil || err.Error() != "Missing required cmdlint arg: --hostname" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolveTarget(t *testing.T) {
	target, err := Resolve(lookupFrom(map[string]string{
		FlagInfluxHost:   "influx",
		FlagInfluxPort:   "8086",
		FlagInfluxDBName: "telegraf",
		FlagHostname:     "",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.InfluxPort != 8086 || target.InfluxHost != "influx" || target.InfluxDBName != "telegraf" || target.Hostname != "" {
		t.Fatalf("unexpected target: %+v", target)
	}
}

func TestResolveInvalidPort(t *testing.T) {
	_, err := Resolve(lookupFrom(map[string]string{
		FlagInfluxHost:   "influx",
		FlagInfluxPort:   "http",
		FlagInfluxDBName: "telegraf",
		FlagHostname:     "web01",
	}))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Missing || cfgErr.Field != FlagInfluxPort {
		t.Fatalf("expected invalid port error, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHECK_BOND_CONFIG", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Query.Window != "1m" || cfg.Influx.Scheme != "http" || cfg.Evaluator.Concurrency != 1 || cfg.Logging.Level != "warn" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "check_bond.yaml")
	data := []byte("influx:\n  scheme: https\n  username: reader\nquery:\n  window: 5m\nevaluator:\n  concurrency: 4\nmetrics:\n  textfile: /tmp/bond.prom\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CHECK_BOND_INFLUX_PASSWORD", "secret")
	t.Setenv("CHECK_BOND_LOG_LEVEL", "debug")
	t.Setenv("CHECK_BOND_LOG_FORMAT", "json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Influx.Scheme != "https" || cfg.Influx.Username != "reader" || cfg.Influx.Password != "secret" {
		t.Fatalf("unexpected influx config: %+v", cfg.Influx)
	}
	if cfg.Query.Window != "5m" || cfg.Evaluator.Concurrency != 4 || cfg.Metrics.Textfile != "/tmp/bond.prom" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.JSON {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadRejectsBadWindow(t *testing.T) {
	t.Setenv("CHECK_BOND_QUERY_WINDOW", "1 minute")
	if _, err := Load(""); !errors.Is(err, utils.ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
