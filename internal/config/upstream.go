package config

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// UpstreamType selects the wire protocol used to reach the model provider.
type UpstreamType string

const (
	// UpstreamGemini talks to the Gemini API through the official SDK.
	UpstreamGemini UpstreamType = "gemini"

	// UpstreamOpenAI talks to any OpenAI-compatible chat completions endpoint.
	UpstreamOpenAI UpstreamType = "openai"
)

// Upstream is the single credentialed provider all models are served from.
type Upstream struct {
	// Type is gemini (default) or openai.
	Type UpstreamType `yaml:"type" json:"type"`

	// APIKey is the provider credential. Never logged.
	APIKey string `yaml:"api-key,omitempty" json:"-"`

	// BaseURL overrides the provider endpoint. Required for openai.
	BaseURL string `yaml:"base-url,omitempty" json:"base-url,omitempty"`

	// ProxyURL routes upstream traffic through an http(s) or socks5 proxy.
	ProxyURL string `yaml:"proxy-url,omitempty" json:"proxy-url,omitempty"`

	// Timeout bounds a single model call, as a Go duration string.
	Timeout string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

func (u *Upstream) normalize() {
	u.Type = UpstreamType(strings.ToLower(strings.TrimSpace(string(u.Type))))
	if u.Type == "" {
		u.Type = UpstreamGemini
	}
	u.APIKey = strings.TrimSpace(u.APIKey)
	u.BaseURL = strings.TrimRight(strings.TrimSpace(u.BaseURL), "/")
	u.ProxyURL = strings.TrimSpace(u.ProxyURL)
	u.Timeout = strings.TrimSpace(u.Timeout)
	if u.Timeout == "" {
		u.Timeout = "120s"
	}
}

// Validate checks the upstream block.
func (u *Upstream) Validate() error {
	switch u.Type {
	case UpstreamGemini:
	case UpstreamOpenAI:
		if u.BaseURL == "" {
			return &ValidationError{Field: "upstream.base-url", Message: "base-url is required for openai"}
		}
	default:
		return &ValidationError{Field: "upstream.type", Message: "unsupported type " + string(u.Type)}
	}
	if d, err := time.ParseDuration(u.Timeout); err != nil || d <= 0 {
		return &ValidationError{Field: "upstream.timeout", Message: "must be a positive duration"}
	}
	return nil
}

// CallTimeout returns the parsed per-call timeout.
func (u Upstream) CallTimeout() time.Duration {
	d, err := time.ParseDuration(u.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// ModelCandidate is one entry of the fallback list. Lower priority is tried first.
type ModelCandidate struct {
	Name     string `yaml:"name" json:"name"`
	Priority int    `yaml:"priority" json:"priority"`
}

// DefaultModels returns the built-in candidate list in priority order.
func DefaultModels() []ModelCandidate {
	return []ModelCandidate{
		{Name: "gemini-1.5-pro", Priority: 1},
		{Name: "gemini-1.5-flash", Priority: 2},
		{Name: "gemini-pro", Priority: 3},
		{Name: "gemini-pro-latest", Priority: 4},
	}
}

// SanitizeModels trims names, drops blanks and duplicates, assigns positional
// priorities to entries without one, and returns the list sorted by priority.
// Ties keep their configured order.
func SanitizeModels(models []ModelCandidate) []ModelCandidate {
	if len(models) == 0 {
		return nil
	}

	result := make([]ModelCandidate, 0, len(models))
	seen := make(map[string]struct{}, len(models))
	for i, m := range models {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			continue
		}
		if _, dup := seen[m.Name]; dup {
			continue
		}
		seen[m.Name] = struct{}{}
		if m.Priority <= 0 {
			m.Priority = i + 1
		}
		result = append(result, m)
	}

	slices.SortStableFunc(result, func(a, b ModelCandidate) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return result
}

// ModelsFromNames builds a candidate list from names in order.
func ModelsFromNames(names []string) []ModelCandidate {
	out := make([]ModelCandidate, 0, len(names))
	for i, n := range names {
		out = append(out, ModelCandidate{Name: n, Priority: i + 1})
	}
	return SanitizeModels(out)
}
