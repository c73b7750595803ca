package operation

import "strings"

// Field defaults substituted when a value cannot be extracted from a reply.
const (
	UnknownComplexity    = "Unknown"
	NoExplanation        = "No explanation available"
	NoImprovements       = "No improvements available."
	UnparsedImprovements = "Unable to parse optimization suggestions. Please try again."
)

// Result is implemented by the four typed operation results.
type Result interface {
	Operation() Operation
}

type AnalysisResult struct {
	TimeComplexity  string `json:"time_complexity"`
	SpaceComplexity string `json:"space_complexity"`
	Explanation     string `json:"explanation"`
}

type OptimizationResult struct {
	OptimizedCode string   `json:"optimized_code"`
	Improvements  []string `json:"improvements"`
}

// ConversionResult carries Error only when the conversion degraded.
type ConversionResult struct {
	ConvertedCode  string `json:"converted_code"`
	TargetLanguage string `json:"target_language"`
	Error          string `json:"error,omitempty"`
}

type ExplanationResult struct {
	Explanation string `json:"explanation"`
}

func (AnalysisResult) Operation() Operation     { return Analyze }
func (OptimizationResult) Operation() Operation { return Optimize }
func (ConversionResult) Operation() Operation   { return Convert }
func (ExplanationResult) Operation() Operation  { return Explain }

// Degraded builds the result returned when the model layer failed.
// Every field is populated and msg is embedded in the error-carrying field.
func Degraded(op Operation, req CodeRequest, msg string) Result {
	errText := "Error: " + msg
	switch op {
	case Analyze:
		return AnalysisResult{
			TimeComplexity:  UnknownComplexity,
			SpaceComplexity: UnknownComplexity,
			Explanation:     errText,
		}
	case Optimize:
		return OptimizationResult{
			OptimizedCode: req.Code,
			Improvements:  []string{errText},
		}
	case Convert:
		target := strings.TrimSpace(req.TargetLanguage)
		if target == "" {
			target = req.Language
		}
		return ConversionResult{
			ConvertedCode:  req.Code,
			TargetLanguage: target,
			Error:          msg,
		}
	default:
		return ExplanationResult{Explanation: errText}
	}
}
