package marketplace

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Answer is one field of a submitted form.
type Answer struct {
	QuestionIdentifier string
	FreeText           string
}

type questionFormAnswers struct {
	XMLName xml.Name `xml:"QuestionFormAnswers"`
	Answers []struct {
		QuestionIdentifier string `xml:"QuestionIdentifier"`
		FreeText           string `xml:"FreeText"`
	} `xml:"Answer"`
}

// ParseAnswers decodes an MTurk QuestionFormAnswers document. A single
// answer and a list of answers decode the same way.
func ParseAnswers(doc string) ([]Answer, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, nil
	}
	var parsed questionFormAnswers
	if err := xml.Unmarshal([]byte(doc), &parsed); err != nil {
		return nil, fmt.Errorf("marketplace: parse answers: %w", err)
	}
	answers := make([]Answer, 0, len(parsed.Answers))
	for _, a := range parsed.Answers {
		answers = append(answers, Answer{
			QuestionIdentifier: strings.TrimSpace(a.QuestionIdentifier),
			FreeText:           a.FreeText,
		})
	}
	return answers, nil
}
