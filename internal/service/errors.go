package service

import (
	"fmt"
	"strings"

	"go-warehouse/internal/apperror"
	"go-warehouse/pkg/validator"
)

// validationError runs the struct validator and turns the first failure
// into an apperror.ValidationError.
func validationError(v interface{}) error {
	errs := validator.ValidateStruct(v)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return &apperror.ValidationError{
		Field:   strings.ToLower(snake(first.FailedField)),
		Message: describeTag(first.Tag, first.Value),
	}
}

func describeTag(tag, param string) string {
	switch tag {
	case "required", "notblank":
		return "is required"
	case "gt":
		return "must be greater than " + param
	case "gte":
		return "must not be less than " + param
	case "decimal_gte0":
		return "must not be negative"
	case "max":
		return "must be at most " + param + " characters"
	case "oneof":
		return "must be inbound or outbound"
	}
	return fmt.Sprintf("failed %q check", tag)
}

// snake turns MinStock into min_stock to match the JSON field names.
func snake(s string) string {
	var b strings.Builder
	var prev rune
	for _, r := range s {
		if r >= 'A' && r <= 'Z' && prev >= 'a' && prev <= 'z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
