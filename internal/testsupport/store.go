package testsupport

import (
	"testing"

	"abxsurvey/internal/config"
	"abxsurvey/internal/manifest"
)

// MustOpenManifest opens the manifest database for cfg and registers cleanup.
func MustOpenManifest(t testing.TB, cfg *config.Config) *manifest.Store {
	t.Helper()

	store, err := manifest.Open(cfg.ManifestPath())
	if err != nil {
		t.Fatalf("manifest.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
