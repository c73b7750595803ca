package executor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/FahadBinHussain/Xenovate/internal/provider"
)

// GeminiConfig configures a GeminiGenerator.
type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiGenerator calls the Gemini API through the official SDK.
type GeminiGenerator struct {
	client *genai.Client
}

// NewGeminiGenerator builds the SDK client once. It performs no network I/O.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiGenerator{client: client}, nil
}

// Generate sends prompt as a single user turn to model.
func (g *GeminiGenerator) Generate(ctx context.Context, model, prompt string, cfg provider.GenerationConfig) (provider.Generation, error) {
	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(cfg.Temperature),
		TopP:            genai.Ptr(cfg.TopP),
		MaxOutputTokens: cfg.MaxOutputTokens,
	}
	if cfg.TopK > 0 {
		gc.TopK = genai.Ptr(cfg.TopK)
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), gc)
	if err != nil {
		return provider.Generation{}, wrapGeminiError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return provider.Generation{}, errors.New("gemini: response has no candidates")
	}

	cand := resp.Candidates[0]
	if cand.Content == nil {
		return provider.Generation{}, fmt.Errorf("gemini: empty candidate (finish reason %s)", cand.FinishReason)
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}

	gen := provider.Generation{Model: model, Text: sb.String()}
	if um := resp.UsageMetadata; um != nil {
		gen.Usage = provider.Usage{
			PromptTokens: int64(um.PromptTokenCount),
			OutputTokens: int64(um.CandidatesTokenCount),
			TotalTokens:  int64(um.TotalTokenCount),
		}
	}
	return gen, nil
}

// wrapGeminiError exposes the SDK's HTTP status to the classifier.
func wrapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Code: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &StatusError{Code: apiErrPtr.Code, Status: apiErrPtr.Status, Message: apiErrPtr.Message}
	}
	return err
}
