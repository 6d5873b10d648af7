package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRunIDHandler(t *testing.T) {
	var buf bytes.Buffer
	handler := newRunIDHandler(slog.NewJSONHandler(&buf, nil), "run-123")

	slog.New(handler).Info("test message")

	if !strings.Contains(buf.String(), `"run_id":"run-123"`) {
		t.Errorf("expected run_id in output, got: %s", buf.String())
	}
}

func TestRunIDHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := newRunIDHandler(slog.NewJSONHandler(&buf, nil), "run-abc")

	slog.New(handler).With("extra", "value").Info("test message")

	output := buf.String()
	if !strings.Contains(output, `"run_id":"run-abc"`) {
		t.Errorf("expected run_id in output, got: %s", output)
	}
	if !strings.Contains(output, `"extra":"value"`) {
		t.Errorf("expected extra attr in output, got: %s", output)
	}
}

func TestConsoleHandlerQuotesAndCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelInfo, false)).
		With(FieldComponent, "publisher", FieldSurveyID, "004211")

	logger.Debug("hidden")
	logger.Info("HIT created", "title", "ABX listening test", "empty", "")

	line := buf.String()
	if strings.Contains(line, "hidden") {
		t.Fatalf("debug record written at info level: %q", line)
	}
	for _, want := range []string{
		"INFO publisher: HIT created",
		"survey_id=004211",
		`title="ABX listening test"`,
		`empty=""`,
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should lead the message, got %q", line)
	}
}
