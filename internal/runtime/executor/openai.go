package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/FahadBinHussain/Xenovate/internal/provider"
	"github.com/FahadBinHussain/Xenovate/internal/util"
)

// OpenAIConfig configures an OpenAIGenerator.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// OpenAIGenerator calls any OpenAI-compatible chat completions endpoint.
type OpenAIGenerator struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewOpenAIGenerator returns a generator posting to {BaseURL}/chat/completions.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("openai: base url is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAIGenerator{
		apiKey:   cfg.APIKey,
		endpoint: cfg.BaseURL + "/chat/completions",
		client:   client,
	}, nil
}

// Generate sends prompt as a single user message. Top-k has no equivalent
// in this API and is not sent.
func (o *OpenAIGenerator) Generate(ctx context.Context, model, prompt string, cfg provider.GenerationConfig) (provider.Generation, error) {
	body, err := buildChatRequest(model, prompt, cfg)
	if err != nil {
		return provider.Generation{}, fmt.Errorf("openai: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return provider.Generation{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return provider.Generation{}, fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return provider.Generation{}, HandleHTTPError(resp, "openai executor")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.Generation{}, fmt.Errorf("openai: read response: %w", err)
	}
	return parseChatResponse(model, prompt, data)
}

func buildChatRequest(model, prompt string, cfg provider.GenerationConfig) ([]byte, error) {
	body := []byte(`{"messages":[{"role":"user","content":""}]}`)
	var err error
	set := func(path string, value any) {
		if err == nil {
			body, err = sjson.SetBytes(body, path, value)
		}
	}
	set("model", model)
	set("messages.0.content", prompt)
	set("temperature", cfg.Temperature)
	set("top_p", cfg.TopP)
	if cfg.MaxOutputTokens > 0 {
		set("max_tokens", cfg.MaxOutputTokens)
	}
	return body, err
}

func parseChatResponse(model, prompt string, data []byte) (provider.Generation, error) {
	if !gjson.ValidBytes(data) {
		return provider.Generation{}, errors.New("openai: response is not valid JSON")
	}
	parsed := gjson.ParseBytes(data)
	if msg := parsed.Get("error.message"); msg.Exists() {
		return provider.Generation{}, &StatusError{Code: http.StatusBadGateway, Status: parsed.Get("error.type").String(), Message: msg.String()}
	}
	content := parsed.Get("choices.0.message.content")
	if !content.Exists() {
		return provider.Generation{}, errors.New("openai: response has no choices")
	}

	gen := provider.Generation{Model: model, Text: content.String()}
	if usage := parsed.Get("usage"); usage.Exists() {
		gen.Usage = provider.Usage{
			PromptTokens: usage.Get("prompt_tokens").Int(),
			OutputTokens: usage.Get("completion_tokens").Int(),
			TotalTokens:  usage.Get("total_tokens").Int(),
		}
	} else {
		gen.Usage.PromptTokens = util.EstimateTokens(prompt)
		gen.Usage.OutputTokens = util.EstimateTokens(gen.Text)
	}
	if gen.Usage.TotalTokens == 0 {
		gen.Usage.TotalTokens = gen.Usage.PromptTokens + gen.Usage.OutputTokens
	}
	return gen, nil
}
