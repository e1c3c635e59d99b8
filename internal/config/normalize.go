package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) applyEnv() {
	overrides := []struct {
		env    string
		target *string
	}{
		{EnvSourceDir, &c.Paths.SourceDir},
		{EnvOutputDir, &c.Paths.OutputDir},
		{EnvSeason, &c.Season.Season},
		{EnvCompetition, &c.Season.Competition},
		{EnvLogLevel, &c.Logging.Level},
	}
	for _, o := range overrides {
		if value, ok := os.LookupEnv(o.env); ok && strings.TrimSpace(value) != "" {
			*o.target = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSeason()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.SourceDir) == "" {
		c.Paths.SourceDir = defaultSourceDir
	}
	if c.Paths.SourceDir, err = ExpandPath(strings.TrimSpace(c.Paths.SourceDir)); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = ExpandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LedgerPath) == "" {
		c.Paths.LedgerPath = defaultLedgerPath
	}
	if c.Paths.LedgerPath, err = ExpandPath(strings.TrimSpace(c.Paths.LedgerPath)); err != nil {
		return fmt.Errorf("paths.ledger_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeSeason() {
	c.Season.Season = strings.TrimSpace(c.Season.Season)
	if c.Season.Season == "" {
		c.Season.Season = defaultSeason
	}
	c.Season.Competition = strings.TrimSpace(c.Season.Competition)
	if c.Season.Competition == "" {
		c.Season.Competition = defaultCompetition
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
