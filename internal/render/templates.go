package render

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed templates/*.html
var defaults embed.FS

// Template file names expected in the assets directory.
const (
	IntroFile        = "intro.html"
	OutroFile        = "outro.html"
	InstructionsFile = "instructions.html"
	QuestionFile     = "question.html"
)

// RequiredFiles lists every template the survey needs.
var RequiredFiles = []string{IntroFile, OutroFile, InstructionsFile, QuestionFile}

// ErrMissingTemplate is returned when the assets directory lacks a required file.
var ErrMissingTemplate = errors.New("render: missing template")

// Templates holds the loaded survey pages.
type Templates struct {
	Intro        string
	Outro        string
	Instructions string
	question     *template.Template
}

// QuestionData is the field set available to question.html.
type QuestionData struct {
	// Question is the 1-based slot number.
	Question  int
	Questions int
	Bucket    string
	Region    string
	// AudioA, AudioB and AudioX are the obfuscated object names.
	AudioA string
	AudioB string
	AudioX string
	URLA   template.URL
	URLB   template.URL
	URLX   template.URL
}

// MissingTemplates reports which required files are absent from dir.
func MissingTemplates(dir string) []string {
	var missing []string
	for _, name := range RequiredFiles {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || info.IsDir() {
			missing = append(missing, name)
		}
	}
	return missing
}

// LoadTemplates reads the four survey templates from dir.
func LoadTemplates(dir string) (*Templates, error) {
	if missing := MissingTemplates(dir); len(missing) > 0 {
		return nil, fmt.Errorf("%w in %s: %s", ErrMissingTemplate, dir, strings.Join(missing, ", "))
	}

	read := func(name string) (string, error) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return "", fmt.Errorf("render: read %s: %w", name, err)
		}
		return string(data), nil
	}

	var t Templates
	var err error
	if t.Intro, err = read(IntroFile); err != nil {
		return nil, err
	}
	if t.Outro, err = read(OutroFile); err != nil {
		return nil, err
	}
	if t.Instructions, err = read(InstructionsFile); err != nil {
		return nil, err
	}
	question, err := read(QuestionFile)
	if err != nil {
		return nil, err
	}
	t.question, err = template.New(QuestionFile).Option("missingkey=error").Parse(question)
	if err != nil {
		return nil, fmt.Errorf("render: parse %s: %w", QuestionFile, err)
	}
	return &t, nil
}

// WriteDefaults copies the built-in templates into dir. Existing files are
// left alone unless force is set. It returns the files written.
func WriteDefaults(dir string, force bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("render: create %s: %w", dir, err)
	}
	var written []string
	for _, name := range RequiredFiles {
		dst := filepath.Join(dir, name)
		if !force {
			if _, err := os.Stat(dst); err == nil {
				continue
			} else if !errors.Is(err, fs.ErrNotExist) {
				return written, err
			}
		}
		data, err := defaults.ReadFile("templates/" + name)
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return written, fmt.Errorf("render: write %s: %w", dst, err)
		}
		written = append(written, dst)
	}
	return written, nil
}
