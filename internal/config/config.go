// Package config loads service settings from the environment, an optional
// .env file and, for the CLI, command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"go-chi-calculator/internal/calculator"
)

const EnvPrefix = "CALC"

// Config holds every tunable of the calculator binaries. Keys map to
// CALC_<KEY> environment variables.
type Config struct {
	Addr             string        `mapstructure:"addr"`
	MaxInputLength   int           `mapstructure:"max_input_length"`
	MaxDisplayLength int           `mapstructure:"max_display_length"`
	Precision        int           `mapstructure:"precision"`
	FormatMode       string        `mapstructure:"format_mode"`
	SessionTTL       time.Duration `mapstructure:"session_ttl"`
	SessionCleanup   time.Duration `mapstructure:"session_cleanup"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`
	TelegramToken    string        `mapstructure:"telegram_token"`
	TelegramTimeout  int           `mapstructure:"telegram_timeout"`
	OTelEnabled      bool          `mapstructure:"otel_enabled"`
}

var defaults = map[string]any{
	"addr":               ":8080",
	"max_input_length":   calculator.DefaultMaxInputLength,
	"max_display_length": 10,
	"precision":          3,
	"format_mode":        string(calculator.FormatDecimal),
	"session_ttl":        "20m",
	"session_cleanup":    "1m",
	"shutdown_timeout":   "5s",
	"telegram_token":     "",
	"telegram_timeout":   60,
	"otel_enabled":       true,
}

// New returns a viper instance with defaults set and CALC_* environment
// variables bound.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads environment variables from .env when present.
// Existing process environment variables are not overridden.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load .env: %w", err)
}

// Load reads .env and the environment into a validated Config.
func Load() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	return FromViper(New())
}

// FromViper decodes and validates the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.MaxInputLength < 1 {
		errs = append(errs, fmt.Errorf("max_input_length must be positive, got %d", c.MaxInputLength))
	}
	if c.MaxDisplayLength < 8 {
		errs = append(errs, fmt.Errorf("max_display_length must be at least 8, got %d", c.MaxDisplayLength))
	}
	if c.Precision < 0 || c.Precision > 15 {
		errs = append(errs, fmt.Errorf("precision must be between 0 and 15, got %d", c.Precision))
	}
	if _, err := calculator.ParseFormatMode(c.FormatMode); err != nil {
		errs = append(errs, err)
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL))
	}
	if c.SessionCleanup <= 0 {
		errs = append(errs, fmt.Errorf("session_cleanup must be positive, got %s", c.SessionCleanup))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// CalculatorOptions derives the state machine settings from c.
func (c *Config) CalculatorOptions() calculator.Options {
	opts := calculator.DefaultOptions()
	opts.MaxInputLength = c.MaxInputLength
	opts.Formatter = c.Formatter()
	return opts
}

func (c *Config) Formatter() calculator.Formatter {
	mode, _ := calculator.ParseFormatMode(c.FormatMode)
	return calculator.Formatter{
		Mode:      mode,
		Precision: c.Precision,
		MaxLength: c.MaxDisplayLength,
	}
}
