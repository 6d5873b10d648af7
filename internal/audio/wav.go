package audio

import (
	"errors"
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnsupportedFormat is returned for WAV files that are not integer PCM with
// 16, 24 or 32 bits per sample.
var ErrUnsupportedFormat = errors.New("unsupported wav format")

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// Clip is decoded audio with interleaved samples normalized to [-1, 1].
type Clip struct {
	Samples    []float64
	SampleRate int
	Channels   int
	BitDepth   int
}

// ReadWAV decodes a PCM WAV file.
func ReadWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s is not a valid wav file", ErrUnsupportedFormat, path)
	}
	depth := int(dec.BitDepth)
	if !supportedDepth(depth) || (dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible) {
		return nil, fmt.Errorf("%w: %s has %d-bit format %d", ErrUnsupportedFormat, path, depth, dec.WavAudioFormat)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav %s: %w", path, err)
	}

	scale := fullScale(depth)
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / scale
	}
	return &Clip{
		Samples:    samples,
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   depth,
	}, nil
}

// WriteWAV encodes clip as PCM WAV at path, truncating any existing file.
func WriteWAV(path string, clip *Clip) error {
	if clip == nil {
		return errors.New("write wav: clip is nil")
	}
	if !supportedDepth(clip.BitDepth) {
		return fmt.Errorf("%w: %d-bit output", ErrUnsupportedFormat, clip.BitDepth)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}

	scale := fullScale(clip.BitDepth)
	data := make([]int, len(clip.Samples))
	for i, v := range clip.Samples {
		data[i] = int(math.Max(-scale, math.Min(scale-1, math.Round(clamp(v)*scale))))
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: clip.Channels, SampleRate: clip.SampleRate},
		Data:           data,
		SourceBitDepth: clip.BitDepth,
	}

	enc := wav.NewEncoder(f, clip.SampleRate, clip.BitDepth, clip.Channels, wavFormatPCM)
	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode wav %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalize wav %s: %w", path, err)
	}
	return f.Close()
}

func supportedDepth(depth int) bool {
	return depth == 16 || depth == 24 || depth == 32
}

func fullScale(depth int) float64 {
	return math.Exp2(float64(depth - 1))
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
