// Package config provides configuration management for jsonwatch.
//
// Configuration is loaded from four sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (JSONWATCH_ prefix)
//  3. Config file (.jsonwatch.yaml)
//  4. Defaults
package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Supported input formats.
const (
	InputJSON = "json"
	InputYAML = "yaml"
)

// Supported output formats.
const (
	OutputText    = "text"
	OutputJSON    = "json"
	OutputYAML    = "yaml"
	OutputUnified = "unified"
)

// DefaultInterval is the polling interval in seconds.
const DefaultInterval = 2.0

// maxIntervalSeconds is the longest interval a time.Duration can hold.
var maxIntervalSeconds = math.Floor(float64(math.MaxInt64) / float64(time.Second))

// Config represents the global configuration for jsonwatch.
type Config struct {
	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat controls the format of log output.
	// Valid values: text, json.
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// Verbose lowers the log level: 1 for info, 2 or more for debug
	// (which includes the raw input of every cycle).
	Verbose int `mapstructure:"verbose" json:"verbose"`

	// Interval is the polling interval in seconds.
	Interval float64 `mapstructure:"interval" json:"interval"`

	// NoDate disables the timestamp on each report.
	NoDate bool `mapstructure:"no-date" json:"noDate"`

	// NoInitialValues disables printing the first document.
	NoInitialValues bool `mapstructure:"no-initial-values" json:"noInitialValues"`

	// Changes stops after that many reported changes; 0 means never.
	Changes int `mapstructure:"changes" json:"changes"`

	// Format selects how changes are rendered: text, json, yaml, unified.
	Format string `mapstructure:"format" json:"format"`

	// Input selects how source output is parsed: json or yaml.
	Input string `mapstructure:"input" json:"input"`

	// ConfigFile is the resolved path to the config file used.
	// Set by Load, never read from the config itself.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel:  LogLevelWarn,
		LogFormat: LogFormatText,
		Interval:  DefaultInterval,
		Format:    OutputText,
		Input:     InputJSON,
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	var errs []error

	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// valid
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel))
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
		// valid
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q: must be one of text, json", c.LogFormat))
	}

	switch c.Format {
	case OutputText, OutputJSON, OutputYAML, OutputUnified:
		// valid
	default:
		errs = append(errs, fmt.Errorf("invalid format %q: must be one of text, json, yaml, unified", c.Format))
	}

	switch c.Input {
	case InputJSON, InputYAML:
		// valid
	default:
		errs = append(errs, fmt.Errorf("invalid input %q: must be one of json, yaml", c.Input))
	}

	switch {
	case !(c.Interval > 0) || math.IsInf(c.Interval, 0):
		errs = append(errs, fmt.Errorf("invalid interval %v: must be a positive number of seconds", c.Interval))
	case c.Interval > maxIntervalSeconds:
		errs = append(errs, fmt.Errorf("invalid interval %v: must be at most %v seconds", c.Interval, maxIntervalSeconds))
	case c.IntervalDuration() <= 0:
		errs = append(errs, fmt.Errorf("invalid interval %v: must be at least one nanosecond", c.Interval))
	}

	if c.Changes < 0 {
		errs = append(errs, fmt.Errorf("invalid changes %d: must not be negative", c.Changes))
	}

	if c.Verbose < 0 {
		errs = append(errs, fmt.Errorf("invalid verbose %d: must not be negative", c.Verbose))
	}

	return errors.Join(errs...)
}

// EffectiveLogLevel returns the log level to use. Quiet forces "error";
// otherwise Verbose may lower the configured level.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	switch {
	case c.Verbose >= 2:
		return LogLevelDebug
	case c.Verbose == 1 && (c.LogLevel == LogLevelWarn || c.LogLevel == LogLevelError):
		return LogLevelInfo
	}

	return c.LogLevel
}

// IntervalDuration returns Interval as a time.Duration.
func (c *Config) IntervalDuration() time.Duration {
	return time.Duration(c.Interval * float64(time.Second))
}

// Load initialises configuration from flags, environment variables, and an
// optional config file. A fresh viper instance is used on every call so that
// Load is safe for concurrent tests.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("quiet", false)
	v.SetDefault("verbose", 0)
	v.SetDefault("interval", d.Interval)
	v.SetDefault("no-date", false)
	v.SetDefault("no-initial-values", false)
	v.SetDefault("changes", 0)
	v.SetDefault("format", d.Format)
	v.SetDefault("input", d.Input)
}

// configureEnv sets up environment variable support.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("JSONWATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// configureFile sets up the config file source.
func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	v.SetConfigName(".jsonwatch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "jsonwatch"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// bindFlags walks from cmd up to the root and binds all PersistentFlags.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
