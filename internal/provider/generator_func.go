package provider

import "context"

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, model, prompt string, cfg GenerationConfig) (Generation, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, model, prompt string, cfg GenerationConfig) (Generation, error) {
	return f(ctx, model, prompt, cfg)
}
