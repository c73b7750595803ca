// Package operation defines the four code operations, their request shape
// and the typed results returned to callers.
package operation

import (
	"errors"
	"fmt"
	"strings"
)

// Operation names one of the supported code transformations.
type Operation string

const (
	Analyze  Operation = "analyze"
	Optimize Operation = "optimize"
	Convert  Operation = "convert"
	Explain  Operation = "explain"
)

// All lists every operation in route order.
var All = []Operation{Analyze, Optimize, Convert, Explain}

// ParseOperation maps a case-insensitive name to an Operation.
func ParseOperation(name string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range All {
		if op == known {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q", name)
}

func (o Operation) String() string { return string(o) }

// CodeRequest is the inbound payload shared by all operations.
type CodeRequest struct {
	Code           string `json:"code"`
	Language       string `json:"language"`
	TargetLanguage string `json:"target_language,omitempty"`
}

// Validate rejects requests missing a field the operation needs.
// Whitespace-only values count as missing.
func (r CodeRequest) Validate(op Operation) error {
	if strings.TrimSpace(r.Code) == "" {
		return &ValidationError{Field: "code"}
	}
	if strings.TrimSpace(r.Language) == "" {
		return &ValidationError{Field: "language"}
	}
	if op == Convert && strings.TrimSpace(r.TargetLanguage) == "" {
		return &ValidationError{Field: "target_language"}
	}
	return nil
}

// ValidationError reports a missing required request field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "missing required field: " + e.Field
}

// ErrNotConfigured is returned when no upstream credential is configured.
var ErrNotConfigured = errors.New("API key not configured")
