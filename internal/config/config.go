package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"matchdata/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input, output and bookkeeping locations.
type Paths struct {
	SourceDir  string `toml:"source_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
	LedgerPath string `toml:"ledger_path"`
}

// Season carries the constant context stamped on every ingested record.
type Season struct {
	Season      string `toml:"season"`
	Competition string `toml:"competition"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Ledger controls the SQLite run history.
type Ledger struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for matchdata.
//
// Configuration sections:
//   - Paths: match folders, archive output, logs and the run ledger
//   - Season: season and competition labels written as metadata
//   - Logging: log format and level
//   - Ledger: whether runs are recorded
type Config struct {
	Paths   Paths   `toml:"paths"`
	Season  Season  `toml:"season"`
	Logging Logging `toml:"logging"`
	Ledger  Ledger  `toml:"ledger"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Environment
// overrides (optionally sourced from ./.env) are applied after the file. The
// returned config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, "", false, err
	}
	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// decodeFile strictly decodes the TOML file at path over cfg, so keys absent
// from the file keep their defaults and unknown keys are an error.
func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	defer f.Close()

	err = toml.NewDecoder(f).DisallowUnknownFields().Decode(cfg)
	var strict *toml.StrictMissingError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &strict):
		return fmt.Errorf("parse config %s: unknown keys:\n%s", path, strict.String())
	default:
		return fmt.Errorf("parse config %s: %w", path, err)
	}
}

// resolveConfigPath returns the config file to read and whether it exists.
// An explicit path is used as given; otherwise the first existing candidate
// wins and the user-level path is reported when none exists.
func resolveConfigPath(path string) (string, bool, error) {
	candidates := []string{defaultConfigPath, projectConfigFile}
	if path != "" {
		candidates = []string{path}
	}

	var first string
	for _, candidate := range candidates {
		expanded, err := ExpandPath(candidate)
		if err != nil {
			return "", false, err
		}
		if first == "" {
			first = expanded
		}
		info, err := os.Stat(expanded)
		switch {
		case err == nil && !info.IsDir():
			return expanded, true, nil
		case err == nil:
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		case !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}
	return first, false, nil
}

// loadDotEnv populates the process environment from ./.env when present.
// Variables already set in the environment are left alone.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// EnsureDirectories creates the output, log and ledger directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	if c.Ledger.Enabled {
		dirs = append(dirs, filepath.Dir(c.Paths.LedgerPath))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath is the file guarding an output directory against concurrent runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.OutputDir, ".matchdata.lock")
}

// ExpandPath resolves a leading "~" against the user's home directory and
// returns the cleaned absolute path. Empty input stays empty.
func ExpandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if rest, ok := strings.CutPrefix(p, "~"); ok && (rest == "" || os.IsPathSeparator(rest[0])) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %q: home directory: %w", p, err)
		}
		p = home + rest
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", p, err)
	}
	return abs, nil
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		_, err := io.WriteString(w, sampleConfig)
		return err
	})
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
