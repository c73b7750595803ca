package provider

import (
	"errors"
	"net/http"
	"strings"
)

// ErrorCategory is the failure class of a single upstream call.
type ErrorCategory int

const (
	// CategoryOther aborts the fallback loop.
	CategoryOther ErrorCategory = iota
	// CategoryQuota excludes the model and moves on to the next candidate.
	CategoryQuota
	// CategoryCredential aborts the loop: every candidate would fail the same way.
	CategoryCredential
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryQuota:
		return "quota"
	case CategoryCredential:
		return "credential"
	default:
		return "error"
	}
}

// Classifier maps an upstream error to its category.
type Classifier func(err error) ErrorCategory

// StatusCodeError is implemented by upstream errors that carry an HTTP status.
type StatusCodeError interface {
	StatusCode() int
}

// Substrings matched against the lowercased error text, checked in order.
var (
	quotaPatterns = []string{
		"quota",
		"resource has been exhausted",
		"resource_exhausted",
		"too many requests",
		"rate limit",
		"rate_limit",
		"ratelimit",
	}
	credentialPatterns = []string{
		"api key",
		"api_key_invalid",
		"invalid_api_key",
		"unauthenticated",
		"incorrect api key",
		"invalid authentication",
	}
	notFoundPatterns = []string{
		"not found",
		"not_found",
		"is not supported",
		"does not exist",
	}
)

// DefaultClassifier inspects the HTTP status first, then the error text.
func DefaultClassifier(err error) ErrorCategory {
	if err == nil {
		return CategoryOther
	}
	switch statusCodeFromError(err) {
	case http.StatusTooManyRequests:
		return CategoryQuota
	case http.StatusUnauthorized:
		return CategoryCredential
	}

	msg := strings.ToLower(err.Error())
	if containsAny(msg, quotaPatterns) {
		return CategoryQuota
	}
	if containsAny(msg, credentialPatterns) {
		return CategoryCredential
	}
	return CategoryOther
}

// isModelNotFound reports whether err says the model does not exist for this credential.
func isModelNotFound(err error) bool {
	if err == nil {
		return false
	}
	if statusCodeFromError(err) == http.StatusNotFound {
		return true
	}
	return containsAny(strings.ToLower(err.Error()), notFoundPatterns)
}

func statusCodeFromError(err error) int {
	var sc StatusCodeError
	if errors.As(err, &sc) && sc != nil {
		return sc.StatusCode()
	}
	return 0
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
