package util

import "testing"

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(\"\") = %d", got)
	}
	short := EstimateTokens("hello")
	long := EstimateTokens("hello world, this is a much longer sentence with many more tokens in it")
	if short <= 0 || long <= short {
		t.Errorf("short = %d, long = %d", short, long)
	}
}

func TestRedactSecret(t *testing.T) {
	tests := []struct {
		text    string
		secrets []string
		want    string
	}{
		{"key AIzaSy123 rejected", []string{"AIzaSy123"}, "key [REDACTED] rejected"},
		{"nothing here", []string{"abc123"}, "nothing here"},
		{"empty secret", []string{"", "  "}, "empty secret"},
		{"a1 and b2", []string{"a1", "b2"}, "[REDACTED] and [REDACTED]"},
	}
	for _, tt := range tests {
		if got := RedactSecret(tt.text, tt.secrets...); got != tt.want {
			t.Errorf("RedactSecret(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	if got := MaskSecret("AIzaSyABCDEFGH1234"); got != "AIza...1234" {
		t.Errorf("MaskSecret = %q", got)
	}
	if got := MaskSecret("short"); got != "*****" {
		t.Errorf("MaskSecret(short) = %q", got)
	}
}
