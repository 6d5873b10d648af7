package survey

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"abxsurvey/internal/audio"
	"abxsurvey/internal/cipher"
	"abxsurvey/internal/logging"
	"abxsurvey/internal/manifest"
	"abxsurvey/internal/marketplace"
)

// FormResult groups the submissions for one form's HIT.
type FormResult struct {
	Form        int
	HITID       string
	Assignments []AssignmentResult
}

// AssignmentResult is one worker's decoded submission.
type AssignmentResult struct {
	marketplace.Assignment
	Responses []Response
	// Unmatched holds answer fields that do not belong to a question slot.
	Unmatched []marketplace.Answer
}

// Response is the decoded answer to one slot.
type Response struct {
	Slot   int
	Kind   manifest.Kind
	Padded bool
	// Choice is the option the worker picked ("A" or "B").
	Choice string
	// Role is the category that was presented at Choice.
	Role string
	// File is the original file name behind Choice.
	File       string
	Transcript string
}

// PassedChecks reports whether every attention check picked the reference.
func (a AssignmentResult) PassedChecks() bool {
	for _, r := range a.Responses {
		if r.Kind == manifest.KindDummy && r.Role != string(audio.RoleReference) {
			return false
		}
	}
	return true
}

var answerField = regexp.MustCompile(`^q(\d+)(-transcript)?$`)

// Results fetches submitted assignments for every published form of id and
// decodes each answer back to the role and file it selected.
func (s *Service) Results(ctx context.Context, id string) ([]FormResult, error) {
	if err := s.requireMarket("results"); err != nil {
		return nil, err
	}
	record, err := s.Survey(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithSurveyID(ctx, id)

	var results []FormResult
	for i := range record.Forms {
		form := &record.Forms[i]
		if !form.Published() {
			continue
		}
		assignments, err := s.market.SubmittedAssignments(ctx, form.HITID)
		if err != nil {
			return results, Wrap(ErrExternal, "results", "list assignments", form.HITID, err)
		}
		fr := FormResult{Form: form.Index, HITID: form.HITID}
		for _, a := range assignments {
			fr.Assignments = append(fr.Assignments, decodeAssignment(form, a))
		}
		logging.WithContext(logging.WithFormIndex(ctx, form.Index), s.logger).Debug("results fetched",
			logging.String(logging.FieldHITID, form.HITID),
			logging.Int("assignments", len(fr.Assignments)),
		)
		results = append(results, fr)
	}
	return results, nil
}

func decodeAssignment(form *manifest.Form, a marketplace.Assignment) AssignmentResult {
	out := AssignmentResult{Assignment: a}
	bySlot := map[int]*Response{}
	respond := func(slot int) *Response {
		if r, ok := bySlot[slot]; ok {
			return r
		}
		q, _ := form.Question(slot)
		r := &Response{Slot: slot, Kind: q.Kind, Padded: q.Padded}
		bySlot[slot] = r
		return r
	}

	for _, ans := range a.Answers {
		m := answerField.FindStringSubmatch(ans.QuestionIdentifier)
		if m == nil {
			out.Unmatched = append(out.Unmatched, ans)
			continue
		}
		slot, _ := strconv.Atoi(m[1])
		q, ok := form.Question(slot)
		if !ok {
			out.Unmatched = append(out.Unmatched, ans)
			continue
		}
		r := respond(slot)
		if m[2] != "" {
			r.Transcript = strings.TrimSpace(ans.FreeText)
			continue
		}
		choice := strings.ToUpper(strings.TrimSpace(ans.FreeText))
		role, ok := q.RoleFor(choice)
		if !ok {
			out.Unmatched = append(out.Unmatched, ans)
			continue
		}
		r.Choice = choice
		r.Role = role
		name := q.CipherA
		if choice == "B" {
			name = q.CipherB
		}
		if decoded, err := cipher.Decode(name); err == nil {
			r.File = decoded
		}
	}

	for _, q := range form.Questions {
		if r, ok := bySlot[q.Slot]; ok {
			out.Responses = append(out.Responses, *r)
		}
	}
	return out
}
