package survey

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks problems the user fixes by editing config, templates or audio.
	ErrConfiguration = errors.New("configuration error")
	// ErrExternal marks failures reported by storage or the marketplace.
	ErrExternal = errors.New("external service error")
	// ErrAborted marks work stopped by cancellation.
	ErrAborted = errors.New("aborted")
	// ErrLocked is returned when another run holds the work directory lock.
	ErrLocked = errors.New("work directory is locked by another run")
)

// Wrap builds an error message that includes step context while tagging it
// with the provided marker. The marker should be one of the sentinels above.
func Wrap(marker error, step, operation, message string, err error) error {
	detail := buildDetail(step, operation, message)
	if marker == nil {
		marker = ErrExternal
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(step, operation, message string) string {
	parts := make([]string, 0, 3)
	if step = strings.TrimSpace(step); step != "" {
		parts = append(parts, step)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "survey failure"
	}
	return strings.Join(parts, ": ")
}
