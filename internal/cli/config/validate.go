package config

import (
	"fmt"
	"log/slog"
	"strings"
)

var validOutputs = []string{"auto", "text", "markdown", "md", "html", "csv", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TransfersPath == "" {
		return fmt.Errorf("transfers_path is required")
	}
	if !c.NoState && c.StatePath == "" {
		return fmt.Errorf("state_path is required unless no_state is set")
	}
	if c.PreviewRows < -1 {
		return fmt.Errorf("preview_rows must be -1 (all) or more, got %d", c.PreviewRows)
	}
	valid := false
	for _, o := range validOutputs {
		if c.OutputFormat == o {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid output %q (valid: %s)", c.OutputFormat, strings.Join(validOutputs, ", "))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if err := c.Loader.Validate(); err != nil {
		return fmt.Errorf("invalid loader configuration: %w", err)
	}
	return nil
}

// ParseLogLevel maps a level name to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q (valid: debug, info, warn, error)", s)
	}
	return l, nil
}
