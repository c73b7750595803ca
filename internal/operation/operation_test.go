package operation

import (
	"errors"
	"testing"
)

func TestParseOperation(t *testing.T) {
	for _, name := range []string{"analyze", " Optimize ", "CONVERT", "explain"} {
		if _, err := ParseOperation(name); err != nil {
			t.Errorf("ParseOperation(%q) error: %v", name, err)
		}
	}
	if _, err := ParseOperation("compile"); err == nil {
		t.Error("expected error for unknown operation")
	}
}

func TestCodeRequestValidate(t *testing.T) {
	tests := []struct {
		name  string
		op    Operation
		req   CodeRequest
		field string
	}{
		{"empty code", Analyze, CodeRequest{Language: "go"}, "code"},
		{"blank code", Explain, CodeRequest{Code: "  \n", Language: "go"}, "code"},
		{"empty language", Optimize, CodeRequest{Code: "x"}, "language"},
		{"convert without target", Convert, CodeRequest{Code: "x", Language: "go"}, "target_language"},
		{"convert ok", Convert, CodeRequest{Code: "x", Language: "go", TargetLanguage: "rust"}, ""},
		{"explain ignores target", Explain, CodeRequest{Code: "x", Language: "go"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate(tt.op)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) || vErr.Field != tt.field {
				t.Fatalf("err = %v, want ValidationError{%s}", err, tt.field)
			}
		})
	}
}

func TestDegraded(t *testing.T) {
	req := CodeRequest{Code: "x = 1", Language: "python"}

	a := Degraded(Analyze, req, "boom").(AnalysisResult)
	if a.TimeComplexity != UnknownComplexity || a.SpaceComplexity != UnknownComplexity || a.Explanation != "Error: boom" {
		t.Errorf("analyze = %+v", a)
	}

	o := Degraded(Optimize, req, "boom").(OptimizationResult)
	if o.OptimizedCode != req.Code || len(o.Improvements) != 1 || o.Improvements[0] != "Error: boom" {
		t.Errorf("optimize = %+v", o)
	}

	c := Degraded(Convert, req, "boom").(ConversionResult)
	if c.ConvertedCode != req.Code || c.TargetLanguage != "python" || c.Error != "boom" {
		t.Errorf("convert = %+v", c)
	}
	req.TargetLanguage = "go"
	if c := Degraded(Convert, req, "boom").(ConversionResult); c.TargetLanguage != "go" {
		t.Errorf("convert target = %q", c.TargetLanguage)
	}

	e := Degraded(Explain, req, "boom").(ExplanationResult)
	if e.Explanation != "Error: boom" {
		t.Errorf("explain = %+v", e)
	}
}
