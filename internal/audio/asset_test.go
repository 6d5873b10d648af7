package audio_test

import (
	"os"
	"path/filepath"
	"testing"

	"abxsurvey/internal/audio"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDiscoverGroupsAndOrdersByIndex(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"reference_03.wav", "reference_01.wav", "nested/reference_02.wav",
		"proposed_02.wav", "proposed_01.wav", "proposed_03.wav",
		"reference_04.flac", "notes.txt", "dummy_01.wav",
	} {
		touch(t, filepath.Join(dir, name))
	}

	set, err := audio.Discover(dir, ".wav")
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(set.Reference) != 3 || len(set.Proposed) != 3 {
		t.Fatalf("unexpected counts: ref=%d prop=%d", len(set.Reference), len(set.Proposed))
	}
	if len(set.Baseline) != 0 {
		t.Fatalf("expected no baseline files, got %d", len(set.Baseline))
	}
	wantRef := []string{"reference_01.wav", "reference_02.wav", "reference_03.wav"}
	for i, want := range wantRef {
		if got := set.Reference[i].Name(); got != want {
			t.Fatalf("reference[%d] = %q, want %q", i, got, want)
		}
		if set.Reference[i].Role != audio.RoleReference {
			t.Fatalf("reference[%d] has role %q", i, set.Reference[i].Role)
		}
	}
	if set.Proposed[0].Name() != "proposed_01.wav" || set.Proposed[2].Name() != "proposed_03.wav" {
		t.Fatalf("unexpected proposed order: %v", set.Proposed)
	}
}

func TestDiscoverRequiresExtension(t *testing.T) {
	if _, err := audio.Discover(t.TempDir(), " "); err == nil {
		t.Fatal("expected error for empty extension")
	}
}

func TestDummyPath(t *testing.T) {
	cases := map[string]string{
		"/audio/reference_01.wav": "/audio/dummy_01.wav",
		"/audio/sample_01.wav":    "/audio/dummy_sample_01.wav",
	}
	for in, want := range cases {
		if got := audio.DummyPath(in); got != want {
			t.Fatalf("DummyPath(%q) = %q, want %q", in, got, want)
		}
	}
}
