package usage

import "time"

// UsageRecord is one OperationService run. It never carries code, prompts
// or replies.
type UsageRecord struct {
	Operation    string    `json:"operation"`
	Model        string    `json:"model"`
	Provider     string    `json:"provider"`
	RequestedAt  time.Time `json:"requested_at"`
	Failed       bool      `json:"failed"`
	Degraded     bool      `json:"degraded"`
	LatencyMs    int64     `json:"latency_ms"`
	PromptTokens int64     `json:"prompt_tokens"`
	OutputTokens int64     `json:"output_tokens"`
	TotalTokens  int64     `json:"total_tokens"`
}

// AggregatedStats summarizes a time period.
type AggregatedStats struct {
	TotalRequests int64 `json:"total_requests"`
	SuccessCount  int64 `json:"success_count"`
	FailureCount  int64 `json:"failure_count"`
	DegradedCount int64 `json:"degraded_count"`
	TotalTokens   int64 `json:"total_tokens"`
}

// DailyStats represents aggregated metrics for a single day.
type DailyStats struct {
	Day      string `json:"day"` // 2006-01-02
	Requests int64  `json:"requests"`
	Tokens   int64  `json:"tokens"`
}

// ModelStats aggregates runs by the model that answered.
type ModelStats struct {
	Model        string `json:"model"`
	Provider     string `json:"provider"`
	Requests     int64  `json:"requests"`
	SuccessCount int64  `json:"success_count"`
	FailureCount int64  `json:"failure_count"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	TotalTokens  int64  `json:"total_tokens"`
	AvgLatencyMs int64  `json:"avg_latency_ms"`
}

// OperationStats aggregates runs by operation.
type OperationStats struct {
	Operation     string `json:"operation"`
	Requests      int64  `json:"requests"`
	SuccessCount  int64  `json:"success_count"`
	FailureCount  int64  `json:"failure_count"`
	DegradedCount int64  `json:"degraded_count"`
	TotalTokens   int64  `json:"total_tokens"`
	AvgLatencyMs  int64  `json:"avg_latency_ms"`
}

// UsageSnapshot is the GET /api/usage response body.
type UsageSnapshot struct {
	// From atomic counters (instant)
	TotalRequests int64 `json:"total_requests"`
	SuccessCount  int64 `json:"success_count"`
	FailureCount  int64 `json:"failure_count"`
	DegradedCount int64 `json:"degraded_count"`
	TotalTokens   int64 `json:"total_tokens"`

	// From the backend, when one is configured
	Persistent    bool             `json:"persistent"`
	RequestsByDay map[string]int64 `json:"requests_by_day,omitempty"`
	TokensByDay   map[string]int64 `json:"tokens_by_day,omitempty"`
	Models        []ModelStats     `json:"models,omitempty"`
	Operations    []OperationStats `json:"operations,omitempty"`
}
