package provider

import (
	"errors"
	"fmt"
)

// ErrNoCandidates is returned when the invoker has no models configured.
var ErrNoCandidates = errors.New("no model candidates configured")

// CredentialError reports that the upstream rejected the configured credential.
type CredentialError struct {
	Model string
	Err   error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential rejected by upstream (model %s): %v", e.Model, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// ExhaustedError reports that no candidate produced a response.
type ExhaustedError struct {
	// Attempts is the number of upstream calls made.
	Attempts int
	// LastModel is the last candidate called, empty when none was.
	LastModel string
	// Last is the final error seen.
	Last error
}

func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("all models exhausted after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("all models exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// CallError wraps a non-quota upstream failure that aborted the fallback loop.
type CallError struct {
	Model string
	Err   error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("model %s: %v", e.Model, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// FailedModel returns the model an invoker error is attributed to, or "".
func FailedModel(err error) string {
	var (
		ce *CredentialError
		ca *CallError
		ee *ExhaustedError
	)
	switch {
	case errors.As(err, &ce):
		return ce.Model
	case errors.As(err, &ca):
		return ca.Model
	case errors.As(err, &ee):
		return ee.LastModel
	}
	return ""
}
