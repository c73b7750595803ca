// Package prompt builds the instruction text sent to the model for each operation.
package prompt

import (
	"fmt"
	"strings"

	"github.com/FahadBinHussain/Xenovate/internal/operation"
)

// Build returns the prompt for op. It assumes req already passed validation.
func Build(op operation.Operation, req operation.CodeRequest) string {
	code := req.Code
	lang := strings.TrimSpace(req.Language)

	switch op {
	case operation.Analyze:
		return fmt.Sprintf("Analyze this %s code and provide:\n"+
			"1. Time complexity\n"+
			"2. Space complexity\n"+
			"3. A brief explanation\n\n"+
			"Code:\n%s\n\n"+
			"Please format your response as JSON with keys: time_complexity, space_complexity, explanation",
			lang, code)
	case operation.Optimize:
		return fmt.Sprintf("Optimize this %s code and provide:\n"+
			"1. The optimized code\n"+
			"2. A list of improvements made\n\n"+
			"Code:\n%s\n\n"+
			"Please format your response as JSON with keys: optimized_code, improvements",
			lang, code)
	case operation.Convert:
		return fmt.Sprintf("Convert this %s code to %s:\n\n"+
			"Code:\n%s\n\n"+
			"Please provide only the converted code without any explanations or markdown formatting.",
			lang, strings.TrimSpace(req.TargetLanguage), code)
	default:
		return fmt.Sprintf("Explain this %s code in simple terms:\n\n"+
			"Code:\n%s\n\n"+
			"Please provide a clear and concise explanation.",
			lang, code)
	}
}
