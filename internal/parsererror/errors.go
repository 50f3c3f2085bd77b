// Package parsererror defines the typed errors returned by extractors, loaders and
// pipeline collaborators.
package parsererror

import "fmt"

// ParseError is a failure to interpret a single value.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v", e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports invalid configuration or reference data.
type ValidationError struct {
	Source string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Source, e.Reason)
}

// InvalidFormatError means an input file is not in the format its extension suggests.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s", e.FilePath, e.Msg, e.ExpectedFormat)
}

// DataExtractionError means text could not be pulled out of a readable file.
type DataExtractionError struct {
	FilePath string
	Reason   string
	Err      error
}

func (e *DataExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data extraction failed in file '%s': %s: %v", e.FilePath, e.Reason, e.Err)
	}
	return fmt.Sprintf("data extraction failed in file '%s': %s", e.FilePath, e.Reason)
}

func (e *DataExtractionError) Unwrap() error { return e.Err }

// ClassificationError wraps a matcher failure for one transaction.
type ClassificationError struct {
	TransactionID string
	Matcher       string
	Err           error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed for %s using %s: %v", e.TransactionID, e.Matcher, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// CollaboratorError reports that an external store or service could not be reached.
// The pipeline treats it as a degradation, never as a batch failure.
type CollaboratorError struct {
	Collaborator string
	Operation    string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s unavailable during %s: %v", e.Collaborator, e.Operation, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
