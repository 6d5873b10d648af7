package partition

import (
	"abxsurvey/internal/audio"
)

// Mode selects which categories are compared in non-dummy questions.
type Mode string

const (
	// ModeTrue compares reference against proposed.
	ModeTrue Mode = "true"
	// ModePseudo compares proposed against baseline with reference as anchor.
	ModePseudo Mode = "pseudo"
)

// Layout fixes the size of every form.
type Layout struct {
	MaxQuestions   int
	DummyQuestions int
}

// ComparisonsPerForm is the number of real comparison slots in each form.
func (l Layout) ComparisonsPerForm() int {
	return l.MaxQuestions - l.DummyQuestions
}

// Assignment is the audio bound to one question slot. It is either a
// Comparison or a Dummy.
type Assignment interface {
	// Reference is the anchor (X) clip of the question.
	Reference() audio.Asset
	// Asset returns the clip playing role in this question.
	Asset(role audio.Role) (audio.Asset, bool)
	isAssignment()
}

// Comparison is a real question drawn from the input lists.
type Comparison struct {
	Ref      audio.Asset
	Proposed audio.Asset
	Baseline *audio.Asset
	// Index is the position of the triple in the original, unpadded lists.
	Index int
	// Padded marks a repeat added to fill the final form.
	Padded bool
}

func (c Comparison) Reference() audio.Asset { return c.Ref }

func (c Comparison) Asset(role audio.Role) (audio.Asset, bool) {
	switch role {
	case audio.RoleReference:
		return c.Ref, true
	case audio.RoleProposed:
		return c.Proposed, true
	case audio.RoleBaseline:
		if c.Baseline != nil {
			return *c.Baseline, true
		}
	}
	return audio.Asset{}, false
}

func (Comparison) isAssignment() {}

// Dummy is an attention check: a reference and its noised copy.
type Dummy struct {
	Ref    audio.Asset
	Noised audio.Asset
}

func (d Dummy) Reference() audio.Asset { return d.Ref }

func (d Dummy) Asset(role audio.Role) (audio.Asset, bool) {
	switch role {
	case audio.RoleReference:
		return d.Ref, true
	case audio.RoleDummy:
		return d.Noised, true
	}
	return audio.Asset{}, false
}

func (Dummy) isAssignment() {}

// Placement records which category is presented as option A and which as B.
type Placement struct {
	A audio.Role
	B audio.Role
}

// Question is one slot of a form.
type Question struct {
	// Slot is 1-based.
	Slot       int
	Assignment Assignment
	Placement  Placement
}

// IsDummy reports whether the question is an attention check.
func (q Question) IsDummy() bool {
	_, ok := q.Assignment.(Dummy)
	return ok
}

// AssetA returns the clip presented as option A.
func (q Question) AssetA() audio.Asset {
	a, _ := q.Assignment.Asset(q.Placement.A)
	return a
}

// AssetB returns the clip presented as option B.
func (q Question) AssetB() audio.Asset {
	b, _ := q.Assignment.Asset(q.Placement.B)
	return b
}

// Form is one questionnaire. Questions are ordered by slot.
type Form struct {
	Index     int
	Mode      Mode
	Questions []Question
}

// Question returns the question at the 1-based slot.
func (f Form) Question(slot int) (Question, bool) {
	if slot < 1 || slot > len(f.Questions) {
		return Question{}, false
	}
	q := f.Questions[slot-1]
	return q, q.Slot == slot
}

// DummySlots lists the slots holding attention checks.
func (f Form) DummySlots() []int {
	var slots []int
	for _, q := range f.Questions {
		if q.IsDummy() {
			slots = append(slots, q.Slot)
		}
	}
	return slots
}

// ComparisonSlots lists the slots holding real comparisons.
func (f Form) ComparisonSlots() []int {
	var slots []int
	for _, q := range f.Questions {
		if !q.IsDummy() {
			slots = append(slots, q.Slot)
		}
	}
	return slots
}
