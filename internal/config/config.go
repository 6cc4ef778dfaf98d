// Package config loads runtime settings from defaults, an optional YAML
// file and NEZAM_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the YAML file to load when no path is given.
const EnvConfigFile = "NEZAM_CONFIG"

// Config is the resolved application configuration.
type Config struct {
	AppEnv       string     `yaml:"app_env"`
	DBPath       string     `yaml:"db_path"`
	EnforceStock bool       `yaml:"enforce_stock"`
	Log          LogConfig  `yaml:"log"`
	HTTP         HTTPConfig `yaml:"http"`
}

// LogConfig controls the zap logger built by the logger package.
type LogConfig struct {
	Development       bool   `yaml:"development"`
	Level             string `yaml:"level"`
	Encoding          string `yaml:"encoding"`
	DisableCaller     bool   `yaml:"disable_caller"`
	DisableStacktrace bool   `yaml:"disable_stacktrace"`
}

// HTTPConfig configures the serve command's API listener.
type HTTPConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		AppEnv:       "production",
		DBPath:       "nezam.db",
		EnforceStock: true,
		Log: LogConfig{
			Level:             "info",
			Encoding:          "json",
			DisableStacktrace: true,
		},
		HTTP: HTTPConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"http://localhost:5173"},
		},
	}
}

// Load builds the configuration. path names a YAML file; when empty,
// NEZAM_CONFIG is consulted, and no file is read if that is unset too.
// Unknown YAML keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if cfg.AppEnv == "development" {
		cfg.Log.Development = true
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.AppEnv = getEnv("NEZAM_APP_ENV", cfg.AppEnv)
	cfg.DBPath = getEnv("NEZAM_DB", cfg.DBPath)
	cfg.EnforceStock = getEnvBool("NEZAM_ENFORCE_STOCK", cfg.EnforceStock)
	cfg.Log.Level = getEnv("NEZAM_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Encoding = getEnv("NEZAM_LOG_ENCODING", cfg.Log.Encoding)
	cfg.Log.DisableCaller = getEnvBool("NEZAM_LOG_DISABLE_CALLER", cfg.Log.DisableCaller)
	cfg.Log.DisableStacktrace = getEnvBool("NEZAM_LOG_DISABLE_STACKTRACE", cfg.Log.DisableStacktrace)
	cfg.HTTP.Addr = getEnv("NEZAM_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.CORSOrigins = getEnvSlice("NEZAM_CORS_ORIGINS", cfg.HTTP.CORSOrigins)
}

// Validate rejects settings the program cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path must not be empty"))
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.encoding must be json or console, got %q", c.Log.Encoding))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return fallback
}
