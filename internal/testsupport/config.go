package testsupport

import (
	"path/filepath"
	"testing"

	"abxsurvey/internal/config"
	"abxsurvey/internal/render"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Storage defaults to the local backend so nothing reaches AWS.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.AssetsDir = filepath.Join(base, "assets")
	cfgVal.Paths.AudioDir = filepath.Join(base, "audio")
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Storage.Backend = config.BackendLocal
	cfgVal.Storage.LocalDir = filepath.Join(base, "objects")
	cfgVal.Storage.Bucket = "test-bucket"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLayout overrides the form size on the test config.
func WithLayout(maxQuestions, dummyQuestions int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Survey.MaxQuestionsPerForm = maxQuestions
		b.cfg.Survey.DummyQuestionsPerForm = dummyQuestions
	}
}

// WithDefaultTemplates writes the built-in survey templates into the assets dir.
func WithDefaultTemplates() ConfigOption {
	return func(b *configBuilder) {
		if _, err := render.WriteDefaults(b.cfg.Paths.AssetsDir, false); err != nil {
			b.t.Fatalf("write templates: %v", err)
		}
	}
}

// WithCredentials sets AWS credentials in the environment for the test.
func WithCredentials() ConfigOption {
	return func(b *configBuilder) {
		if tb, ok := b.t.(interface{ Setenv(string, string) }); ok {
			tb.Setenv("AWS_ACCESS_KEY_ID", "AKIATEST")
			tb.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
