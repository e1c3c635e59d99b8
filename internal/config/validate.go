package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSeason(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SourceDir) == "" {
		return errors.New("paths.source_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if filepath.Clean(c.Paths.SourceDir) == filepath.Clean(c.Paths.OutputDir) {
		return errors.New("paths.output_dir must differ from paths.source_dir")
	}
	if c.Ledger.Enabled && strings.TrimSpace(c.Paths.LedgerPath) == "" {
		return errors.New("paths.ledger_path must be set when ledger.enabled is true")
	}
	return nil
}

func (c *Config) validateSeason() error {
	if strings.TrimSpace(c.Season.Season) == "" {
		return errors.New("season.season must be set")
	}
	if strings.TrimSpace(c.Season.Competition) == "" {
		return errors.New("season.competition must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of console, json", c.Logging.Format)
	}
	return nil
}
