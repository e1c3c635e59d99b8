package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"matchdata/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The source directory is created; everything else is left for the code
// under test to create.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "partidos")
	cfgVal.Paths.OutputDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.LedgerPath = filepath.Join(base, "ledger.db")
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}

	if err := os.MkdirAll(builder.cfg.Paths.SourceDir, 0o755); err != nil {
		t.Fatalf("mkdir source dir: %v", err)
	}
	return builder.cfg
}

// WithLedgerDisabled turns off run recording.
func WithLedgerDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = false
	}
}

// WithLogLevel overrides the default "error" level used to keep tests quiet.
func WithLogLevel(level string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Level = level
	}
}

// WriteConfig encodes cfg into a TOML file next to its temp directories and
// returns the file path.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(filepath.Dir(cfg.Paths.SourceDir), "matchdata.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// ClearEnv blanks the MATCHDATA_* overrides so the host environment cannot
// leak into a test.
func ClearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		config.EnvSourceDir, config.EnvOutputDir, config.EnvSeason,
		config.EnvCompetition, config.EnvLogLevel,
	} {
		t.Setenv(name, "")
	}
}
