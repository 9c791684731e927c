package service

import (
	"fmt"
	"strings"

	apperrors "github.com/campus-fixit/issue-service/pkg/util/errorutil"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// NewFieldValidationError wraps field errors in the shared validation error.
func NewFieldValidationError(fields []FieldError) error {
	return apperrors.NewValidationError("validation failed", map[string]any{"fields": fields})
}

func requiredField(field string) FieldError {
	return FieldError{Field: field, Rule: "required", Message: field + " is required"}
}

func oneOfField(field string, allowed []string) FieldError {
	return FieldError{
		Field:   field,
		Rule:    "oneof",
		Param:   strings.Join(allowed, ","),
		Message: fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")),
	}
}

func formatBytes(n int64) string {
	if n%(1024*1024) == 0 {
		return fmt.Sprintf("%dMB", n/(1024*1024))
	}
	return fmt.Sprintf("%d bytes", n)
}
