package manifest

import "time"

// Status tracks where a survey is in its lifecycle.
type Status string

const (
	// StatusDraft surveys have rendered forms but no HITs.
	StatusDraft Status = "draft"
	// StatusPartial surveys have HITs for some forms.
	StatusPartial Status = "partial"
	// StatusPublished surveys have a HIT for every form.
	StatusPublished Status = "published"
)

// Kind distinguishes real comparisons from attention checks.
type Kind string

const (
	KindComparison Kind = "comparison"
	KindDummy      Kind = "dummy"
)

// Survey is one run of the create workflow.
type Survey struct {
	ID             string     `yaml:"id"`
	RunID          string     `yaml:"run_id"`
	Mode           string     `yaml:"mode"`
	Title          string     `yaml:"title"`
	Backend        string     `yaml:"backend"`
	Bucket         string     `yaml:"bucket"`
	Region         string     `yaml:"region"`
	Sandbox        bool       `yaml:"sandbox"`
	Coverage       int        `yaml:"coverage"`
	Reward         string     `yaml:"reward"`
	MaxQuestions   int        `yaml:"max_questions"`
	DummyQuestions int        `yaml:"dummy_questions"`
	Status         Status     `yaml:"status"`
	CreatedAt      time.Time  `yaml:"created_at"`
	PublishedAt    *time.Time `yaml:"published_at,omitempty"`
	Forms          []Form     `yaml:"forms,omitempty"`
}

// Form is one questionnaire of a survey.
type Form struct {
	Index       int        `yaml:"index"`
	XMLPath     string     `yaml:"xml_path"`
	HITID       string     `yaml:"hit_id,omitempty"`
	HITGroupID  string     `yaml:"hit_group_id,omitempty"`
	PublishedAt *time.Time `yaml:"published_at,omitempty"`
	Questions   []Question `yaml:"questions"`
}

// Published reports whether the form has a HIT.
func (f Form) Published() bool {
	return f.HITID != ""
}

// Question is one slot of a form.
type Question struct {
	Slot int  `yaml:"slot"`
	Kind Kind `yaml:"kind"`
	// PlacementA and PlacementB are the roles shown as options A and B.
	PlacementA string `yaml:"a"`
	PlacementB string `yaml:"b"`
	Reference  string `yaml:"reference"`
	Proposed   string `yaml:"proposed,omitempty"`
	Baseline   string `yaml:"baseline,omitempty"`
	Dummy      string `yaml:"dummy,omitempty"`
	CipherA    string `yaml:"cipher_a"`
	CipherB    string `yaml:"cipher_b"`
	CipherX    string `yaml:"cipher_x"`
	// SourceIndex is the triple's position in the input lists; -1 for dummies.
	SourceIndex int  `yaml:"source_index"`
	Padded      bool `yaml:"padded,omitempty"`
}

// RoleFor maps an answer option ("A" or "B") to the role shown there.
func (q Question) RoleFor(option string) (string, bool) {
	switch option {
	case "A", "a":
		return q.PlacementA, true
	case "B", "b":
		return q.PlacementB, true
	}
	return "", false
}

// Form returns the form with index i.
func (s *Survey) Form(i int) (*Form, bool) {
	for idx := range s.Forms {
		if s.Forms[idx].Index == i {
			return &s.Forms[idx], true
		}
	}
	return nil, false
}

// FormForHIT returns the form published as hitID.
func (s *Survey) FormForHIT(hitID string) (*Form, bool) {
	for idx := range s.Forms {
		if s.Forms[idx].HITID == hitID {
			return &s.Forms[idx], true
		}
	}
	return nil, false
}

// Question returns the question at slot.
func (f *Form) Question(slot int) (Question, bool) {
	for _, q := range f.Questions {
		if q.Slot == slot {
			return q, true
		}
	}
	return Question{}, false
}
