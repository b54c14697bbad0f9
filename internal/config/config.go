// Package config loads engagemix settings from an optional YAML file, an
// optional .env file and ENGAGEMIX_* environment variables.
//
// Precedence, lowest first: defaults, YAML file, .env, process environment.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/gauthierbraillon/engagemix/internal/logging"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ENGAGEMIX_"

// Config holds the settings of one engagemix invocation.
type Config struct {
	Input              string `koanf:"input"`
	LogLevel           string `koanf:"log_level"`
	LogFormat          string `koanf:"log_format"`
	TopN               int    `koanf:"top_n"`
	ExportDir          string `koanf:"export_dir"`
	ExportFormat       string `koanf:"export_format"`
	MetricsTextfile    string `koanf:"metrics_textfile"`
	HTTPTimeoutSeconds int    `koanf:"http_timeout_seconds"`
}

// Configuration validation errors.
var (
	ErrInvalidLogLevel     = errors.New("log_level must be one of debug, info, warn, error")
	ErrInvalidLogFormat    = errors.New("log_format must be text or json")
	ErrInvalidTopN         = errors.New("top_n must be a positive integer")
	ErrInvalidExportFormat = errors.New("export_format must be json or yaml")
	ErrInvalidHTTPTimeout  = errors.New("http_timeout_seconds must be a positive integer")
	ErrInvalidInteger      = errors.New("must be a valid integer")
)

// Defaults.
const (
	DefaultLogLevel           = "info"
	DefaultLogFormat          = logging.FormatText
	DefaultTopN               = 5
	DefaultExportDir          = "reports"
	DefaultExportFormat       = "json"
	DefaultHTTPTimeoutSeconds = 30
)

// Default returns a Config holding only default values.
func Default() *Config {
	return &Config{
		LogLevel:           DefaultLogLevel,
		LogFormat:          DefaultLogFormat,
		TopN:               DefaultTopN,
		ExportDir:          DefaultExportDir,
		ExportFormat:       DefaultExportFormat,
		HTTPTimeoutSeconds: DefaultHTTPTimeoutSeconds,
	}
}

// Load reads the optional YAML file at configFilePath and the optional .env
// file at dotenvPath, then applies ENGAGEMIX_* environment variables.
// A missing .env file is ignored; a missing config file that was asked for is
// an error. Returns the config and a slice of validation errors (empty if
// valid).
func Load(configFilePath, dotenvPath string) (*Config, []error) {
	k := koanf.New(".")

	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	if dotenvPath != "" {
		// godotenv never overrides variables already present in the environment.
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, []error{fmt.Errorf("failed to load env file %s: %w", dotenvPath, err)}
		}
	}

	var loadErrs []error

	topN, err := intSetting(k, "TOP_N", "top_n", DefaultTopN)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	timeout, err := intSetting(k, "HTTP_TIMEOUT_SECONDS", "http_timeout_seconds", DefaultHTTPTimeoutSeconds)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	cfg := &Config{
		Input:              envOrDefault("INPUT", k.String("input"), ""),
		LogLevel:           envOrDefault("LOG_LEVEL", k.String("log_level"), DefaultLogLevel),
		LogFormat:          envOrDefault("LOG_FORMAT", k.String("log_format"), DefaultLogFormat),
		TopN:               topN,
		ExportDir:          envOrDefault("EXPORT_DIR", k.String("export_dir"), DefaultExportDir),
		ExportFormat:       envOrDefault("EXPORT_FORMAT", k.String("export_format"), DefaultExportFormat),
		MetricsTextfile:    envOrDefault("METRICS_TEXTFILE", k.String("metrics_textfile"), ""),
		HTTPTimeoutSeconds: timeout,
	}

	return cfg, append(loadErrs, cfg.Validate()...)
}

func envOrDefault(key, koanfVal, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// intSetting returns the environment variable as int if set, otherwise the
// file value at path, or the default. Values that are not whole numbers are
// reported as ErrInvalidInteger.
func intSetting(k *koanf.Koanf, key, path string, defaultVal int) (int, error) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("%s%s %w", EnvPrefix, key, ErrInvalidInteger)
		}
		return i, nil
	}
	if !k.Exists(path) {
		return defaultVal, nil
	}

	switch v := k.Get(path).(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		if v <= math.MaxInt {
			return int(v), nil
		}
	case float64:
		if v == math.Trunc(v) && math.Abs(v) <= math.MaxInt32 {
			return int(v), nil
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s in config file %w, got %v", path, ErrInvalidInteger, k.Get(path))
}

// Validate checks every setting. Returns a slice of validation errors (empty
// if valid).
func (c *Config) Validate() []error {
	var errs []error

	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("%w, got %q", ErrInvalidLogLevel, c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("%w, got %q", ErrInvalidLogFormat, c.LogFormat))
	}
	if c.TopN <= 0 {
		errs = append(errs, ErrInvalidTopN)
	}
	switch strings.ToLower(c.ExportFormat) {
	case "json", "yaml", "yml":
	default:
		errs = append(errs, fmt.Errorf("%w, got %q", ErrInvalidExportFormat, c.ExportFormat))
	}
	if c.HTTPTimeoutSeconds <= 0 {
		errs = append(errs, ErrInvalidHTTPTimeout)
	}

	return errs
}

// Summary returns the settings as display strings, keyed like the YAML file.
func (c *Config) Summary() map[string]string {
	return map[string]string{
		"input":                orNotSet(c.Input),
		"log_level":            c.LogLevel,
		"log_format":           c.LogFormat,
		"top_n":                strconv.Itoa(c.TopN),
		"export_dir":           c.ExportDir,
		"export_format":        c.ExportFormat,
		"metrics_textfile":     orNotSet(c.MetricsTextfile),
		"http_timeout_seconds": strconv.Itoa(c.HTTPTimeoutSeconds),
	}
}

func orNotSet(s string) string {
	if s == "" {
		return "<not set>"
	}
	return s
}
