package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSurveyID is the standardized key for survey identifiers.
	FieldSurveyID = "survey_id"
	// FieldFormIndex is the standardized key for zero-based form indexes.
	FieldFormIndex = "form"
	// FieldHITID is the standardized key for marketplace task identifiers.
	FieldHITID = "hit_id"
	// FieldRunID tags every record written during one CLI invocation.
	FieldRunID = "run_id"
)

type contextKey int

const (
	surveyIDKey contextKey = iota
	formIndexKey
)

// WithSurveyID stores a survey identifier on ctx.
func WithSurveyID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, surveyIDKey, id)
}

// WithFormIndex stores a form index on ctx.
func WithFormIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, formIndexKey, index)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := ctx.Value(surveyIDKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldSurveyID, id))
	}
	if idx, ok := ctx.Value(formIndexKey).(int); ok {
		fields = append(fields, slog.Int(FieldFormIndex, idx))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return logger.With(args...)
}
