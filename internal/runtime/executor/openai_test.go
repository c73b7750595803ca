package executor

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/FahadBinHussain/Xenovate/internal/provider"
)

var testGenCfg = provider.GenerationConfig{Temperature: 0.7, TopP: 0.95, TopK: 40, MaxOutputTokens: 8192}

func TestOpenAIGenerator_Success(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"model":"gpt-x-2024","choices":[{"message":{"role":"assistant","content":"This sets x to 1."}}],"usage":{"prompt_tokens":12,"completion_tokens":6,"total_tokens":18}}`)
	}))
	defer srv.Close()

	gen, err := NewOpenAIGenerator(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1", HTTPClient: srv.Client()})
	if err != nil {
		t.Fatal(err)
	}
	out, err := gen.Generate(context.Background(), "gpt-x", "Explain x=1", testGenCfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Text != "This sets x to 1." || out.Model != "gpt-x" {
		t.Errorf("out = %+v", out)
	}
	if out.Usage != (provider.Usage{PromptTokens: 12, OutputTokens: 6, TotalTokens: 18}) {
		t.Errorf("usage = %+v", out.Usage)
	}

	body := gjson.ParseBytes(gotBody)
	if body.Get("model").String() != "gpt-x" ||
		body.Get("messages.0.role").String() != "user" ||
		body.Get("messages.0.content").String() != "Explain x=1" ||
		body.Get("max_tokens").Int() != 8192 {
		t.Errorf("request body = %s", gotBody)
	}
	if body.Get("top_k").Exists() {
		t.Error("top_k must not be sent")
	}
}

func TestOpenAIGenerator_EstimatesMissingUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"a reasonably long reply text"}}]}`)
	}))
	defer srv.Close()

	gen, _ := NewOpenAIGenerator(OpenAIConfig{BaseURL: srv.URL, HTTPClient: srv.Client()})
	out, err := gen.Generate(context.Background(), "m", "prompt text", testGenCfg)
	if err != nil {
		t.Fatal(err)
	}
	if out.Usage.PromptTokens <= 0 || out.Usage.OutputTokens <= 0 ||
		out.Usage.TotalTokens != out.Usage.PromptTokens+out.Usage.OutputTokens {
		t.Errorf("usage = %+v", out.Usage)
	}
}

func TestOpenAIGenerator_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode int
		wantCat  provider.ErrorCategory
	}{
		{"rate limited", 429, `{"error":{"message":"Rate limit reached","type":"requests"}}`, 429, provider.CategoryQuota},
		{"bad key", 401, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`, 401, provider.CategoryCredential},
		{"server error", 500, `upstream exploded`, 500, provider.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			gen, _ := NewOpenAIGenerator(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()})
			_, err := gen.Generate(context.Background(), "m", "p", testGenCfg)

			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *StatusError", err)
			}
			if se.StatusCode() != tt.wantCode {
				t.Errorf("status = %d, want %d", se.StatusCode(), tt.wantCode)
			}
			if got := provider.DefaultClassifier(err); got != tt.wantCat {
				t.Errorf("category = %s, want %s", got, tt.wantCat)
			}
		})
	}
}

func TestOpenAIGenerator_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	gen, _ := NewOpenAIGenerator(OpenAIConfig{BaseURL: srv.URL, HTTPClient: srv.Client()})
	if _, err := gen.Generate(context.Background(), "m", "p", testGenCfg); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNewOpenAIGenerator_RequiresBaseURL(t *testing.T) {
	if _, err := NewOpenAIGenerator(OpenAIConfig{APIKey: "k"}); err == nil {
		t.Fatal("expected error")
	}
}
