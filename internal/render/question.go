package render

import (
	"fmt"
	"html/template"
	"strings"

	"abxsurvey/internal/cipher"
	"abxsurvey/internal/partition"
	"abxsurvey/internal/storage"
)

// Question renders one slot fragment.
func (t *Templates) Question(data QuestionData) (string, error) {
	var sb strings.Builder
	if err := t.question.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render: question %d: %w", data.Question, err)
	}
	return sb.String(), nil
}

// Form renders every slot of form in slot order. Audio names are encoded with
// the filename cipher and resolved to URLs through store.
func (t *Templates) Form(form partition.Form, store storage.ObjectStore) ([]string, error) {
	fragments := make([]string, 0, len(form.Questions))
	for _, q := range form.Questions {
		data, err := questionData(q, len(form.Questions), store)
		if err != nil {
			return nil, err
		}
		html, err := t.Question(data)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, html)
	}
	return fragments, nil
}

func questionData(q partition.Question, total int, store storage.ObjectStore) (QuestionData, error) {
	a, err := cipher.Encode(q.AssetA().Name())
	if err != nil {
		return QuestionData{}, err
	}
	b, err := cipher.Encode(q.AssetB().Name())
	if err != nil {
		return QuestionData{}, err
	}
	x, err := cipher.Encode(q.Assignment.Reference().Name())
	if err != nil {
		return QuestionData{}, err
	}
	return QuestionData{
		Question:  q.Slot,
		Questions: total,
		Bucket:    store.Bucket(),
		Region:    store.Region(),
		AudioA:    a,
		AudioB:    b,
		AudioX:    x,
		URLA:      template.URL(store.URL(a)),
		URLB:      template.URL(store.URL(b)),
		URLX:      template.URL(store.URL(x)),
	}, nil
}
