package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Config holds leostoc configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Templates TemplatesCfg `mapstructure:"templates" yaml:"templates"`
	Locale    LocaleCfg    `mapstructure:"locale" yaml:"locale"`
	Log       LogCfg       `mapstructure:"log" yaml:"log"`
}

// TemplatesCfg locates structure-definition resources.
type TemplatesCfg struct {
	// Dir holds <template>.yaml overrides; empty uses {home}/templates.
	// Supports ${ENV_VAR} syntax.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Default is the template used when a document does not name one.
	Default string `mapstructure:"default" yaml:"default"`
}

// LocaleCfg controls label formatting.
type LocaleCfg struct {
	Default string `mapstructure:"default" yaml:"default"` // BCP 47 tag, e.g. "en" or "fr-BE"
}

// LogCfg configures the slog handler.
type LogCfg struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Templates: TemplatesCfg{
			Default: "bill",
		},
		Locale: LocaleCfg{
			Default: "en",
		},
		Log: LogCfg{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks values that cannot be caught by unmarshalling.
func (c *Config) Validate() error {
	if _, err := language.Parse(c.Locale.Default); err != nil {
		return fmt.Errorf("invalid locale.default %q: %w", c.Locale.Default, err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q", c.Log.Format)
	}
	return nil
}
