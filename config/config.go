// Package config loads pdflayout settings and YAML layout documents.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/georgepadayatti/pdflayout/pdf/layout"
)

// Common errors
var (
	ErrConfigurationError = errors.New("configuration error")
	ErrInvalidLength      = errors.New("invalid length")
	ErrInvalidValue       = errors.New("invalid value")
	ErrUnknownPageSize    = errors.New("unknown page size")
)

// ConfigError represents a configuration error with context.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	if e.Err == nil {
		return ErrConfigurationError
	}
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level" yaml:"level"`

	// Format is the console log format (console, json).
	Format string `mapstructure:"format" yaml:"format"`

	// Output is the console output (stdout or stderr).
	Output string `mapstructure:"output" yaml:"output"`

	// File is an optional rotated JSON log file.
	File       string `mapstructure:"file" yaml:"file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// Validate validates the logging configuration.
func (c *LoggingConfig) Validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return &ConfigError{Field: "logging.level", Message: err.Error(), Err: ErrInvalidValue}
	}
	switch c.Format {
	case "console", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format '%s'", c.Format), Err: ErrInvalidValue}
	}
	switch c.Output {
	case "stdout", "stderr":
	default:
		return &ConfigError{Field: "logging.output", Message: fmt.Sprintf("unknown output '%s'", c.Output), Err: ErrInvalidValue}
	}
	return nil
}

// PageConfig describes the page geometry.
type PageConfig struct {
	// Size is a named size (A3, A4, A5, Letter, Legal, Tabloid).
	Size string `mapstructure:"size" yaml:"size"`

	// Orientation is portrait or landscape.
	Orientation string `mapstructure:"orientation" yaml:"orientation"`

	// Margins uses the CSS shorthand with one to four lengths, e.g. "1in 2cm".
	Margins string `mapstructure:"margins" yaml:"margins"`
}

var pageSizes = map[string]layout.PageSize{
	"a3":      layout.A3,
	"a4":      layout.A4,
	"a5":      layout.A5,
	"letter":  layout.Letter,
	"legal":   layout.Legal,
	"tabloid": layout.Tabloid,
}

// Layout resolves the page configuration.
func (c PageConfig) Layout() (*layout.PageLayout, error) {
	size, ok := pageSizes[strings.ToLower(c.Size)]
	if !ok {
		return nil, &ConfigError{Field: "page.size", Message: fmt.Sprintf("unknown page size '%s'", c.Size), Err: ErrUnknownPageSize}
	}
	switch strings.ToLower(c.Orientation) {
	case "", "portrait":
		size = size.Portrait()
	case "landscape":
		size = size.Landscape()
	default:
		return nil, &ConfigError{Field: "page.orientation", Message: fmt.Sprintf("unknown orientation '%s'", c.Orientation), Err: ErrInvalidValue}
	}
	pl := layout.NewPageLayout(size)
	if c.Margins != "" {
		m, err := ParseMargins(c.Margins)
		if err != nil {
			return nil, &ConfigError{Field: "page.margins", Message: err.Error(), Err: ErrInvalidLength}
		}
		pl.SetMargins(m)
	}
	return pl, nil
}

// merge returns c with the non-empty fields of o.
func (c PageConfig) merge(o *PageConfig) PageConfig {
	if o == nil {
		return c
	}
	if o.Size != "" {
		c.Size = o.Size
	}
	if o.Orientation != "" {
		c.Orientation = o.Orientation
	}
	if o.Margins != "" {
		c.Margins = o.Margins
	}
	return c
}

// Settings contains the complete application settings.
type Settings struct {
	Page PageConfig `mapstructure:"page" yaml:"page"`

	// MaxPages bounds a pagination run.
	MaxPages int `mapstructure:"max_pages" yaml:"max_pages"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// Validate checks the settings for sane values.
func (s *Settings) Validate() error {
	if s.MaxPages < 0 {
		return &ConfigError{Field: "max_pages", Message: "must not be negative", Err: ErrInvalidValue}
	}
	if _, err := s.Page.Layout(); err != nil {
		return err
	}
	return s.Logging.Validate()
}

// PageLayout resolves the page geometry, letting a document override it.
func (s *Settings) PageLayout(doc *Document) (*layout.PageLayout, error) {
	page := s.Page
	if doc != nil {
		page = page.merge(doc.Page)
	}
	return page.Layout()
}

// SetDefaults initializes default values for every setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("page.size", "A4")
	v.SetDefault("page.orientation", "portrait")
	v.SetDefault("page.margins", "72pt")
	v.SetDefault("max_pages", layout.DefaultMaxPages)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", false)
}

// NewViper returns a viper instance with defaults and PDFLAYOUT_ environment
// overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("PDFLAYOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadSettings reads settings from filename, or from pdflayout.yaml in the
// working directory when filename is empty and such a file exists.
func LoadSettings(v *viper.Viper, filename string) (*Settings, error) {
	if filename != "" {
		v.SetConfigFile(filename)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("pdflayout")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if filename != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// DefaultSettings returns the settings with nothing overridden.
func DefaultSettings() *Settings {
	v := viper.New()
	SetDefaults(v)
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default settings: %v", err))
	}
	return &s
}
