// Package normalize turns raw model replies into typed operation results.
//
// Parsing is layered: strict JSON first, then textual heuristics, then the
// verbatim text. None of the functions here fail; fields that cannot be
// recovered take their documented defaults.
package normalize

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/FahadBinHussain/Xenovate/internal/operation"
)

// Normalize dispatches raw to the normalizer for op.
func Normalize(op operation.Operation, raw string, req operation.CodeRequest) operation.Result {
	switch op {
	case operation.Analyze:
		return Analysis(raw)
	case operation.Optimize:
		return Optimization(raw, req.Code)
	case operation.Convert:
		return Conversion(raw, strings.TrimSpace(req.TargetLanguage))
	default:
		return Explanation(raw)
	}
}

// Analysis parses an analyze reply.
func Analysis(raw string) operation.AnalysisResult {
	cleaned := StripFences(raw)

	if obj, ok := parseObject(cleaned); ok {
		return operation.AnalysisResult{
			TimeComplexity:  orDefault(field(obj, "time_complexity"), operation.UnknownComplexity),
			SpaceComplexity: orDefault(field(obj, "space_complexity"), operation.UnknownComplexity),
			Explanation:     orDefault(field(obj, "explanation"), operation.NoExplanation),
		}
	}

	return operation.AnalysisResult{
		TimeComplexity:  orDefault(matchComplexity(timePatterns, cleaned), operation.UnknownComplexity),
		SpaceComplexity: orDefault(matchComplexity(spacePatterns, cleaned), operation.UnknownComplexity),
		Explanation:     orDefault(cleaned, operation.NoExplanation),
	}
}

// Optimization parses an optimize reply. The original code is returned
// whenever the reply does not carry a usable rewrite.
func Optimization(raw, original string) operation.OptimizationResult {
	cleaned := StripFences(raw)

	obj, ok := parseObject(cleaned)
	if !ok {
		return operation.OptimizationResult{
			OptimizedCode: original,
			Improvements:  []string{operation.UnparsedImprovements},
		}
	}

	return operation.OptimizationResult{
		OptimizedCode: orDefault(StripFences(field(obj, "optimized_code")), original),
		Improvements:  improvements(obj.Get("improvements")),
	}
}

// Conversion extracts converted code. A reply that surrounds a fenced block
// with commentary yields just the block.
func Conversion(raw, target string) operation.ConversionResult {
	trimmed := strings.TrimSpace(raw)
	code := StripFences(trimmed)
	if !strings.HasPrefix(trimmed, fence) {
		if block, ok := ExtractFencedBlock(trimmed); ok && block != "" {
			code = block
		}
	}
	return operation.ConversionResult{
		ConvertedCode:  code,
		TargetLanguage: target,
	}
}

// Explanation returns the trimmed reply verbatim.
func Explanation(raw string) operation.ExplanationResult {
	return operation.ExplanationResult{
		Explanation: orDefault(strings.TrimSpace(raw), operation.NoExplanation),
	}
}

// parseObject finds a JSON object in text. It tries the whole text, the first
// fenced block, and the outermost brace span, in that order. Objects found
// inside prose must carry a known key. A truncated object is accepted as long
// as one of its keys can still be read.
func parseObject(text string) (gjson.Result, bool) {
	if gjson.Valid(text) {
		if res := gjson.Parse(text); res.IsObject() {
			return res, true
		}
	}

	var embedded []string
	if block, ok := ExtractFencedBlock(text); ok {
		embedded = append(embedded, block)
	}
	if open, end := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}'); open >= 0 && end > open {
		embedded = append(embedded, text[open:end+1])
	}
	for _, c := range embedded {
		if !gjson.Valid(c) {
			continue
		}
		if res := gjson.Parse(c); res.IsObject() && hasKnownKey(res) {
			return res, true
		}
	}

	if strings.HasPrefix(text, "{") {
		if res := gjson.Parse(text); hasKnownKey(res) {
			return res, true
		}
	}
	return gjson.Result{}, false
}

var knownKeys = []string{"time_complexity", "space_complexity", "explanation", "optimized_code", "improvements"}

func hasKnownKey(obj gjson.Result) bool {
	for _, key := range knownKeys {
		if obj.Get(key).Exists() {
			return true
		}
	}
	return false
}

// field reads key as trimmed text. Null and missing keys read as "".
func field(obj gjson.Result, key string) string {
	v := obj.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return strings.TrimSpace(v.String())
}

func improvements(v gjson.Result) []string {
	var out []string
	switch {
	case v.IsArray():
		for _, item := range v.Array() {
			if s := strings.TrimSpace(item.String()); s != "" && item.Type != gjson.Null {
				out = append(out, s)
			}
		}
	case v.Type == gjson.String:
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{operation.NoImprovements}
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
