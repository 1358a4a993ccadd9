package testsupport

import (
	"path/filepath"
	"testing"

	"takeoutscout/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Discovery persistence stays enabled; hashing is off unless WithHashing is
// applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.DiscoveriesDir = filepath.Join(base, "state", "discoveries")
	cfgVal.Paths.LogDir = filepath.Join(base, "state", "logs")
	cfgVal.Paths.HashDBPath = filepath.Join(base, "state", "hashes.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithHashing enables content hashing with the named algorithm.
func WithHashing(algorithm string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.ComputeHashes = true
		if algorithm != "" {
			b.cfg.Scan.HashAlgorithm = algorithm
		}
	}
}

// WithoutPersistence disables discovery saving.
func WithoutPersistence() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.SaveDiscovery = false
	}
}

// WithMatchThreshold overrides the EXIF/sidecar agreement window.
func WithMatchThreshold(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dates.MatchThresholdSeconds = seconds
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
