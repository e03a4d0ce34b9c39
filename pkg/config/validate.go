package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lanegraph/pkg/pipeline"
)

// ValidationError represents a configuration validation error with context
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	Field    string
}

func (e *ValidationError) Error() string {
	prefix := e.FilePath
	if prefix == "" {
		prefix = "config"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", prefix, e.Line, e.Column, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field '%s': %s", prefix, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// ValidateYAMLSyntax checks if the YAML file has valid syntax.
// Returns nil if valid, or a ValidationError with line/column information if invalid.
func ValidateYAMLSyntax(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Missing file is not an error - will use defaults
		}
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}

	// Empty file is valid - will use defaults
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		line, column := extractLineColumn(err.Error())
		return &ValidationError{
			FilePath: filePath,
			Line:     line,
			Column:   column,
			Message:  cleanYAMLError(err.Error()),
		}
	}
	return nil
}

// Validate checks struct constraints and the render format list.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		return name
	})
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fieldErr := validationErrors[0]
			return &ValidationError{
				Field:   fieldPath(fieldErr.Namespace()),
				Message: formatValidationError(fieldErr),
			}
		}
		return &ValidationError{Message: err.Error()}
	}

	formats := pipeline.ParseFormats(c.Render.Format)
	if len(formats) == 0 {
		return &ValidationError{Field: "render.format", Message: "is required"}
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return &ValidationError{Field: "render.format", Message: err.Error()}
	}
	return nil
}

// Formats returns the configured render formats.
func (c *Configuration) Formats() []string {
	return pipeline.ParseFormats(c.Render.Format)
}

// extractLineColumn attempts to extract line and column numbers from a YAML error message.
// Returns 0, 0 if unable to extract.
func extractLineColumn(errMsg string) (line, column int) {
	// yaml.v3 errors look like: "yaml: line 5: could not find expected ':'"
	var l, c int
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d: column %d:", &l, &c); n == 2 {
		return l, c
	}
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d:", &l); n == 1 {
		return l, 1
	}
	return 0, 0
}

// cleanYAMLError strips the "yaml: line X:" prefix.
func cleanYAMLError(errMsg string) string {
	if idx := strings.LastIndex(errMsg, ": "); idx > 0 && strings.HasPrefix(errMsg, "yaml:") {
		return errMsg[idx+2:]
	}
	return errMsg
}

// formatValidationError formats a validation error for a specific field.
func formatValidationError(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fieldErr.Param(), " ", ", "))
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fieldErr.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fieldErr.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fieldErr.Tag())
	}
}

// fieldPath turns "Configuration.cache.redis_addr" into "cache.redis_addr".
func fieldPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return path
}
