package config

import (
	"fmt"
)

type MissingConfigError struct {
	Path string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("configuration file not found: %s", e.Path)
}

type InvalidYAMLError struct {
	Path    string
	Wrapped error
}

func (e *InvalidYAMLError) Error() string {
	return fmt.Sprintf("%s is not a valid yaml document: %v", e.Path, e.Wrapped)
}

func (e *InvalidYAMLError) Unwrap() error {
	return e.Wrapped
}

type SchemaViolationError struct {
	Path    string
	Wrapped error
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("%s does not match the configuration schema: %v", e.Path, e.Wrapped)
}

func (e *SchemaViolationError) Unwrap() error {
	return e.Wrapped
}

type MissingPropertyError struct {
	Property string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("configuration is missing required property: %s", e.Property)
}

type InvalidTimeoutError struct {
	Value string
}

func (e *InvalidTimeoutError) Error() string {
	return fmt.Sprintf("formatter.timeout '%s' must be a non-negative duration such as 30s", e.Value)
}

type InvalidIndentWidthError struct {
	Value int
}

func (e *InvalidIndentWidthError) Error() string {
	return fmt.Sprintf("indentWidth must be at least 1, got %d", e.Value)
}

type InvalidJobsError struct {
	Value int
}

func (e *InvalidJobsError) Error() string {
	return fmt.Sprintf("jobs must not be negative, got %d", e.Value)
}

type InvalidExtensionError struct {
	Value string
}

func (e *InvalidExtensionError) Error() string {
	return fmt.Sprintf("extension '%s' must start with '.', e.g. '.rs'", e.Value)
}

type InvalidReservedMarkerError struct {
	Value string
}

func (e *InvalidReservedMarkerError) Error() string {
	return fmt.Sprintf("reserved marker '%s' is not an identifier", e.Value)
}
