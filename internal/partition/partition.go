package partition

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"abxsurvey/internal/audio"
)

// ErrPrecondition reports inputs that cannot be partitioned.
var ErrPrecondition = errors.New("partition precondition violated")

// DummySource produces the noised copy of a reference clip.
type DummySource interface {
	Dummy(ref audio.Asset) (audio.Asset, error)
}

// DetectMode validates list lengths and reports the comparison mode.
func DetectMode(reference, proposed, baseline []audio.Asset) (Mode, error) {
	if len(reference) != len(proposed) {
		return "", fmt.Errorf("%w: %d reference files but %d proposed files", ErrPrecondition, len(reference), len(proposed))
	}
	if len(baseline) == 0 {
		return ModeTrue, nil
	}
	if len(baseline) != len(reference) {
		return "", fmt.Errorf("%w: %d reference files but %d baseline files", ErrPrecondition, len(reference), len(baseline))
	}
	return ModePseudo, nil
}

// Validate checks the layout bounds.
func (l Layout) Validate() error {
	if l.DummyQuestions < 0 {
		return fmt.Errorf("%w: dummy questions must be >= 0 (got %d)", ErrPrecondition, l.DummyQuestions)
	}
	if l.DummyQuestions >= l.MaxQuestions {
		return fmt.Errorf("%w: dummy questions (%d) must be fewer than max questions (%d)", ErrPrecondition, l.DummyQuestions, l.MaxQuestions)
	}
	return nil
}

// FormCount returns how many forms cover n comparisons.
func (l Layout) FormCount(n int) int {
	per := l.ComparisonsPerForm()
	if n <= 0 || per <= 0 {
		return 0
	}
	return (n + per - 1) / per
}

// Padding returns how many repeated comparisons fill the final form.
func (l Layout) Padding(n int) int {
	return l.FormCount(n)*l.ComparisonsPerForm() - n
}

// Partition assigns the aligned lists to forms. baseline may be empty.
func Partition(reference, proposed, baseline []audio.Asset, layout Layout, src rand.Source, dummies DummySource) ([]Form, error) {
	mode, err := DetectMode(reference, proposed, baseline)
	if err != nil {
		return nil, err
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrPrecondition)
	}
	if layout.DummyQuestions > 0 && dummies == nil {
		return nil, fmt.Errorf("%w: dummy source is required when dummy questions are requested", ErrPrecondition)
	}

	n := len(reference)
	per := layout.ComparisonsPerForm()
	count := layout.FormCount(n)
	if count == 0 {
		return nil, nil
	}

	triples := padTriples(reference, proposed, baseline, layout.Padding(n))
	rng := rand.New(src)

	forms := make([]Form, 0, count)
	for i := 0; i < count; i++ {
		form, err := buildForm(i, mode, triples[i*per:(i+1)*per], layout, rng, dummies)
		if err != nil {
			return nil, fmt.Errorf("form %d: %w", i, err)
		}
		forms = append(forms, form)
	}
	return forms, nil
}

func padTriples(reference, proposed, baseline []audio.Asset, pad int) []Comparison {
	n := len(reference)
	out := make([]Comparison, 0, n+pad)
	for i := 0; i < n+pad; i++ {
		src := i % n
		c := Comparison{
			Ref:      reference[src],
			Proposed: proposed[src],
			Index:    src,
			Padded:   i >= n,
		}
		if len(baseline) > 0 {
			b := baseline[src]
			c.Baseline = &b
		}
		out = append(out, c)
	}
	return out
}

func buildForm(index int, mode Mode, slice []Comparison, layout Layout, rng *rand.Rand, dummies DummySource) (Form, error) {
	order := rng.Perm(layout.MaxQuestions)
	dummyIdx := order[:layout.DummyQuestions]
	comparisonIdx := order[layout.DummyQuestions:]

	questions := make([]Question, layout.MaxQuestions)
	for j, idx := range comparisonIdx {
		questions[idx] = Question{Slot: idx + 1, Assignment: slice[j]}
	}
	for _, idx := range dummyIdx {
		ref := slice[rng.IntN(len(slice))].Ref
		noised, err := dummies.Dummy(ref)
		if err != nil {
			return Form{}, fmt.Errorf("dummy for %s: %w", ref.Path, err)
		}
		questions[idx] = Question{Slot: idx + 1, Assignment: Dummy{Ref: ref, Noised: noised}}
	}

	for i := range questions {
		questions[i].Placement = place(questions[i].Assignment, mode, rng.Float64() > 0.5)
	}
	return Form{Index: index, Mode: mode, Questions: questions}, nil
}

// place decides the A/B sides. When challengerFirst is set the challenger
// (dummy, or proposed) is option A.
func place(a Assignment, mode Mode, challengerFirst bool) Placement {
	challenger, foil := audio.RoleProposed, audio.RoleReference
	switch {
	case isDummy(a):
		challenger, foil = audio.RoleDummy, audio.RoleReference
	case mode == ModePseudo:
		challenger, foil = audio.RoleProposed, audio.RoleBaseline
	}
	if challengerFirst {
		return Placement{A: challenger, B: foil}
	}
	return Placement{A: foil, B: challenger}
}

func isDummy(a Assignment) bool {
	_, ok := a.(Dummy)
	return ok
}
