package models

import "fmt"

// WarningKind classifies a recoverable data problem.
type WarningKind string

const (
	WarningParse         WarningKind = "parse"
	WarningNormalization WarningKind = "normalization"
	WarningReconcile     WarningKind = "reconciliation"
	WarningDegraded      WarningKind = "collaborator_unavailable"
)

// Warning records a per-line or per-batch problem that did not stop processing.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Line    int         `json:"line,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", w.Kind, w.Line, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}
