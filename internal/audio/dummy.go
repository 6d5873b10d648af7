package audio

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"abxsurvey/internal/logging"
)

// NoiseFraction is the half-width of the uniform noise band relative to the
// reference's peak magnitude.
const NoiseFraction = 0.05

// AddNoise returns a copy of samples with uniform noise in
// [-NoiseFraction*peak, +NoiseFraction*peak) added and the result clipped to
// [-1, 1]. Silent input is returned unchanged.
func AddNoise(samples []float64, src rand.Source) []float64 {
	out := make([]float64, len(samples))
	copy(out, samples)
	if len(out) == 0 {
		return out
	}
	peak := floats.Norm(samples, math.Inf(1))
	amp := NoiseFraction * peak
	if amp == 0 {
		return out
	}
	noise := distuv.Uniform{Min: -amp, Max: amp, Src: src}
	for i := range out {
		out[i] = clamp(out[i] + noise.Rand())
	}
	return out
}

// Synthesizer writes noised copies of reference audio next to the original.
// A reference is noised at most once per Synthesizer; later requests for the
// same reference reuse the file already written.
type Synthesizer struct {
	src     rand.Source
	logger  *slog.Logger
	written map[string]Asset
}

// NewSynthesizer builds a Synthesizer drawing noise from src.
func NewSynthesizer(src rand.Source, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Synthesizer{src: src, logger: logger, written: map[string]Asset{}}
}

// Dummy returns the dummy asset for ref, creating it on first use.
func (s *Synthesizer) Dummy(ref Asset) (Asset, error) {
	if existing, ok := s.written[ref.Path]; ok {
		return existing, nil
	}
	clip, err := ReadWAV(ref.Path)
	if err != nil {
		return Asset{}, fmt.Errorf("read reference for dummy: %w", err)
	}
	clip.Samples = AddNoise(clip.Samples, s.src)

	target := DummyPath(ref.Path)
	if err := WriteWAV(target, clip); err != nil {
		return Asset{}, fmt.Errorf("write dummy: %w", err)
	}
	dummy := Asset{Path: target, Role: RoleDummy}
	s.written[ref.Path] = dummy
	s.logger.Debug("dummy audio written",
		logging.String("reference", ref.Path),
		logging.String("dummy", target),
		logging.Int("samples", len(clip.Samples)),
	)
	return dummy, nil
}

// Written reports the dummy files created so far.
func (s *Synthesizer) Written() []Asset {
	out := make([]Asset, 0, len(s.written))
	for _, a := range s.written {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
