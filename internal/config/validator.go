package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "\n  %d. %s", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the accepted logging levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks c and returns every problem found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if !slices.Contains([]string{ModeSync, ModeAsync}, c.Parse.Mode) {
		errs = append(errs, ValidationError{
			Field:   "parse.mode",
			Value:   c.Parse.Mode,
			Message: "must be one of: sync, async",
		})
	}
	if c.Parse.Workers < 0 {
		errs = append(errs, ValidationError{
			Field:   "parse.workers",
			Value:   c.Parse.Workers,
			Message: "must not be negative",
		})
	}
	if !slices.Contains([]string{FormatText, FormatXML}, c.Output.Format) {
		errs = append(errs, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: "must be one of: text, xml",
		})
	}
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: "must be one of: " + strings.Join(ValidLogLevels(), ", "),
		})
	}
	return errs
}
