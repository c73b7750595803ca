// Package env provides typed lookups for environment overrides.
package env

import (
	"os"
	"strconv"
	"strings"
)

// LookupEnv returns the trimmed value of key. Empty values are reported as unset.
func LookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// LookupEnvInt parses key as a base-10 integer.
func LookupEnvInt(key string) (int, bool) {
	value, ok := LookupEnv(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

// LookupEnvBool parses key with strconv.ParseBool semantics.
func LookupEnvBool(key string) (bool, bool) {
	value, ok := LookupEnv(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, false
	}
	return b, true
}

// LookupEnvList splits key on commas, dropping empty entries.
func LookupEnvList(key string) ([]string, bool) {
	value, ok := LookupEnv(key)
	if !ok {
		return nil, false
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, len(out) > 0
}
