package testsupport

import (
	"path/filepath"
	"testing"

	"trimveo/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Signing is disabled and the ledger lives under the temp state directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Package.Sign = false
	cfgVal.Signing.UserID = "tester"
	cfgVal.Formats.Approved = []string{".pdf", ".txt"}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Normalize(); err != nil {
		t.Fatalf("normalize test config: %v", err)
	}
	return builder.cfg
}

// WithContentDir sets the directory content files are resolved against.
func WithContentDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.ContentDir = dir
	}
}

// WithApprovedFormats replaces the inline format allow-list.
func WithApprovedFormats(exts ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Formats.Approved = exts
	}
}

// WithLedgerDisabled turns off the SQLite ledger.
func WithLedgerDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = false
	}
}

// WithDuplicatePolicy sets input.duplicate_policy.
func WithDuplicatePolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Input.DuplicatePolicy = policy
	}
}

// BaseDir returns the temp directory backing a config built by NewConfig.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
