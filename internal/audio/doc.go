// Package audio discovers experiment audio on disk and synthesizes the noised
// near-duplicates used by attention-check questions.
//
// Files are matched by role prefix (reference_*, proposed_*, baseline_*) and
// ordered by their comparison index so the three lists stay aligned. WAV
// decoding and encoding go through go-audio; noise is drawn from a caller
// supplied rand.Source so runs can be reproduced from a seed.
//
// Key types:
//   - Asset: a file path tagged with its Role
//   - Clip: decoded, normalized samples in [-1, 1]
//   - Synthesizer: writes dummy WAVs next to their reference
package audio
