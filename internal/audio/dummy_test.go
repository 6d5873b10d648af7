package audio_test

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"abxsurvey/internal/audio"
)

func TestAddNoiseStaysWithinBandAndClips(t *testing.T) {
	samples := []float64{0.99, -0.99, 1, -1, 0.5, 0, -0.25, 0.98}
	src := rand.NewPCG(7, 11)
	for round := 0; round < 200; round++ {
		out := audio.AddNoise(samples, src)
		if len(out) != len(samples) {
			t.Fatalf("length changed: %d", len(out))
		}
		for i, v := range out {
			if v < -1 || v > 1 {
				t.Fatalf("sample %d out of range: %v", i, v)
			}
			if diff := math.Abs(v - samples[i]); diff > audio.NoiseFraction*1+1e-12 {
				t.Fatalf("sample %d moved by %v", i, diff)
			}
		}
	}
}

func TestAddNoiseLeavesInputUntouched(t *testing.T) {
	samples := []float64{0.2, -0.4}
	_ = audio.AddNoise(samples, rand.NewPCG(1, 2))
	if samples[0] != 0.2 || samples[1] != -0.4 {
		t.Fatalf("input mutated: %v", samples)
	}
}

func TestAddNoiseSilence(t *testing.T) {
	out := audio.AddNoise([]float64{0, 0, 0}, rand.NewPCG(1, 2))
	for _, v := range out {
		if v != 0 {
			t.Fatalf("expected silence to stay silent, got %v", out)
		}
	}
}

func TestAddNoiseDeterministicForSeed(t *testing.T) {
	samples := []float64{0.1, 0.2, -0.3, 0.4}
	a := audio.AddNoise(samples, rand.NewPCG(42, 42))
	b := audio.AddNoise(samples, rand.NewPCG(42, 42))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func writeTone(t *testing.T, path string) *audio.Clip {
	t.Helper()
	clip := &audio.Clip{SampleRate: 8000, Channels: 1, BitDepth: 16}
	for i := 0; i < 800; i++ {
		clip.Samples = append(clip.Samples, 0.5*math.Sin(2*math.Pi*440*float64(i)/8000))
	}
	if err := audio.WriteWAV(path, clip); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	return clip
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference_01.wav")
	want := writeTone(t, path)

	got, err := audio.ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if got.SampleRate != 8000 || got.Channels != 1 || got.BitDepth != 16 {
		t.Fatalf("unexpected format: %+v", got)
	}
	if len(got.Samples) != len(want.Samples) {
		t.Fatalf("sample count %d, want %d", len(got.Samples), len(want.Samples))
	}
	for i := range want.Samples {
		if math.Abs(got.Samples[i]-want.Samples[i]) > 1.0/32768 {
			t.Fatalf("sample %d = %v, want %v", i, got.Samples[i], want.Samples[i])
		}
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference_01.wav")
	if err := os.WriteFile(path, []byte("not a wav file at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := audio.ReadWAV(path); err == nil {
		t.Fatal("expected error for invalid wav")
	}
}

func TestSynthesizerWritesSiblingOnce(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "reference_01.wav")
	writeTone(t, refPath)

	synth := audio.NewSynthesizer(rand.NewPCG(3, 4), nil)
	ref := audio.Asset{Path: refPath, Role: audio.RoleReference}

	dummy, err := synth.Dummy(ref)
	if err != nil {
		t.Fatalf("Dummy: %v", err)
	}
	if dummy.Role != audio.RoleDummy {
		t.Fatalf("unexpected role %q", dummy.Role)
	}
	if dummy.Path != filepath.Join(dir, "dummy_01.wav") {
		t.Fatalf("unexpected dummy path %q", dummy.Path)
	}
	clip, err := audio.ReadWAV(dummy.Path)
	if err != nil {
		t.Fatalf("read dummy: %v", err)
	}
	for i, v := range clip.Samples {
		if v < -1 || v > 1 {
			t.Fatalf("dummy sample %d out of range: %v", i, v)
		}
	}

	again, err := synth.Dummy(ref)
	if err != nil {
		t.Fatalf("second Dummy: %v", err)
	}
	if again != dummy {
		t.Fatalf("expected cached dummy, got %+v", again)
	}
	if n := len(synth.Written()); n != 1 {
		t.Fatalf("expected one written dummy, got %d", n)
	}
}
