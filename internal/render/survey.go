package render

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

const (
	// QuestionSeparator joins consecutive question fragments.
	QuestionSeparator = "<br/><br/>"
	// FrameHeight is the worker iframe height in pixels.
	FrameHeight = 600
)

// ErrCDATA is returned when a fragment would terminate the CDATA section early.
var ErrCDATA = errors.New("render: content contains ]]>")

var surveyTemplate = template.Must(template.New("survey").Parse(`<HTMLQuestion xmlns="http://mechanicalturk.amazonaws.com/AWSMechanicalTurkDataSchemas/2011-11-11/HTMLQuestion.xsd">
<HTMLContent><![CDATA[
<!DOCTYPE html>
<html>
<script src="https://assets.crowd.aws/crowd-html-elements.js"></script>
<crowd-form answer-format="flatten-objects">

{{.Intro}}

<br/>
<br/>
<hr/>
<br/>

<h2>Audio Comparison Test</h2>
<p>In this task, you will be asked to listen to {{.Questions}} sets of
three short audio recordings (<b>Reference</b>, <b>A</b>, and <b>B</b>).
You will be asked to transcribe the <b>Reference</b> recording, and then
to select which of <b>A</b> or <b>B</b> sounds most like the
<b>Reference</b>.</p>
<br/>

{{.Questionnaire}}

{{.Outro}}

{{.Instructions}}

</crowd-form>
</html>
]]>
</HTMLContent>
<FrameHeight>{{.FrameHeight}}</FrameHeight>
</HTMLQuestion>
`))

// Survey wraps question fragments (already in slot order) into the
// HTMLQuestion XML document submitted with a HIT.
func (t *Templates) Survey(fragments []string) (string, error) {
	var questionnaire strings.Builder
	for _, f := range fragments {
		questionnaire.WriteString(f)
		questionnaire.WriteString(QuestionSeparator)
	}

	data := struct {
		Intro, Outro, Instructions, Questionnaire string
		Questions, FrameHeight                    int
	}{
		Intro:         t.Intro,
		Outro:         t.Outro,
		Instructions:  t.Instructions,
		Questionnaire: questionnaire.String(),
		Questions:     len(fragments),
		FrameHeight:   FrameHeight,
	}
	for name, part := range map[string]string{
		IntroFile:        data.Intro,
		OutroFile:        data.Outro,
		InstructionsFile: data.Instructions,
		QuestionFile:     data.Questionnaire,
	} {
		if strings.Contains(part, "]]>") {
			return "", fmt.Errorf("%w (%s)", ErrCDATA, name)
		}
	}

	var sb strings.Builder
	if err := surveyTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render: survey: %w", err)
	}
	return sb.String(), nil
}
