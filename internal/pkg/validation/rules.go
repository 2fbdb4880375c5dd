package validation

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yigit/fneseed/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// Email pattern every synthesized address must satisfy
	EmailPattern = `^[a-z]+(\.[a-z]+)*(\.[0-9]+)?@[a-z0-9.\-]+\.[a-z]{2,4}$`

	// Report artifact names produced by the pipeline
	ReportNamePattern = `^seed-report-\d{8}T\d{6}Z\.json$`
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Email      *regexp.Regexp
	ReportName *regexp.Regexp
}{
	Email:      regexp.MustCompile(EmailPattern),
	ReportName: regexp.MustCompile(ReportNamePattern),
}

var validate = validator.New()

// Struct validates s against its `validate` tags and returns an ErrInvalidConfig
// listing every failing field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewInvalidConfigError(err.Error())
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, formatValidationError(fe))
	}
	return apperrors.NewInvalidConfigError(strings.Join(messages, "; "))
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "oneof":
		return field + " must be one of: " + e.Param()
	default:
		return field + " validation failed: " + e.Tag()
	}
}
