package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternal      = errors.New("external service error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Category groups failures by how the operator should react to them.
type Category string

const (
	CategoryConfiguration  Category = "configuration"
	CategoryContent        Category = "content"
	CategoryInfrastructure Category = "infrastructure"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error onto the category reported to the operator.
func Classify(err error) Category {
	switch {
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return CategoryConfiguration
	case errors.Is(err, ErrValidation):
		return CategoryContent
	default:
		return CategoryInfrastructure
	}
}

// Hint returns a one-line next step for the category of err.
func Hint(err error) string {
	switch Classify(err) {
	case CategoryConfiguration:
		return "check the command arguments and configuration file"
	case CategoryContent:
		return "the backend rejected the submitted text"
	default:
		return "check credentials, network access and backend availability, then rerun"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
