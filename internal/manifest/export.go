package manifest

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// ExportYAML writes survey as a YAML document.
func ExportYAML(w io.Writer, survey *Survey) error {
	data, err := yaml.Marshal(survey)
	if err != nil {
		return fmt.Errorf("marshal survey %s: %w", survey.ID, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write survey %s: %w", survey.ID, err)
	}
	return nil
}
