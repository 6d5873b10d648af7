package testsupport

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"abxsurvey/internal/audio"
)

// WriteTone writes a short 16-bit mono sine wave to path.
func WriteTone(t testing.TB, path string, freq float64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	const rate = 8000
	samples := make([]float64, rate/10)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	clip := &audio.Clip{Samples: samples, SampleRate: rate, Channels: 1, BitDepth: 16}
	if err := audio.WriteWAV(path, clip); err != nil {
		t.Fatalf("write tone %s: %v", path, err)
	}
}

// WriteAudioSet creates n reference/proposed clips, plus baseline clips when
// withBaseline is set, named role_NN.wav under dir.
func WriteAudioSet(t testing.TB, dir string, n int, withBaseline bool) {
	t.Helper()

	roles := []audio.Role{audio.RoleReference, audio.RoleProposed}
	if withBaseline {
		roles = append(roles, audio.RoleBaseline)
	}
	for i := 1; i <= n; i++ {
		for r, role := range roles {
			name := fmt.Sprintf("%s_%02d.wav", role, i)
			WriteTone(t, filepath.Join(dir, name), 220+float64(40*i+10*r))
		}
	}
}
