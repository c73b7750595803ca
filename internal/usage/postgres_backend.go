package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend implements Backend on PostgreSQL through a pgx pool.
type PostgresBackend struct {
	pool   *pgxpool.Pool
	writer *batchWriter
}

// NewPostgresBackend connects, verifies the connection and ensures the schema.
// The backend must be started with Start() before use.
func NewPostgresBackend(dsn string, cfg BackendConfig) (*PostgresBackend, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := ensurePostgresSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	b := &PostgresBackend{pool: pool}
	b.writer = newBatchWriter("postgres", cfg, b.writeBatch, b.Cleanup)
	return b, nil
}

func ensurePostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS usage_records (
		id BIGSERIAL PRIMARY KEY,
		operation TEXT NOT NULL,
		model TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL DEFAULT '',
		requested_at TIMESTAMPTZ NOT NULL,
		failed BOOLEAN NOT NULL DEFAULT FALSE,
		degraded BOOLEAN NOT NULL DEFAULT FALSE,
		latency_ms BIGINT NOT NULL DEFAULT 0,
		prompt_tokens BIGINT NOT NULL DEFAULT 0,
		output_tokens BIGINT NOT NULL DEFAULT 0,
		total_tokens BIGINT NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_usage_requested_at ON usage_records(requested_at);
	CREATE INDEX IF NOT EXISTS idx_usage_operation ON usage_records(operation);
	CREATE INDEX IF NOT EXISTS idx_usage_model ON usage_records(model);
	`)
	return err
}

func (b *PostgresBackend) Start() error {
	b.writer.start()
	return nil
}

func (b *PostgresBackend) Stop() error {
	if b == nil {
		return nil
	}
	if b.writer.stop() {
		b.pool.Close()
	}
	return nil
}

func (b *PostgresBackend) Enqueue(record UsageRecord) {
	if b == nil {
		return
	}
	b.writer.enqueue(record)
}

func (b *PostgresBackend) Flush(ctx context.Context) error {
	if b == nil {
		return nil
	}
	return b.writer.flush(ctx)
}

func (b *PostgresBackend) QueryGlobalStats(ctx context.Context, since time.Time) (*AggregatedStats, error) {
	row := b.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE NOT failed),
			COUNT(*) FILTER (WHERE failed),
			COUNT(*) FILTER (WHERE degraded),
			COALESCE(SUM(total_tokens), 0)::BIGINT
		FROM usage_records
		WHERE requested_at >= $1
	`, since)

	var stats AggregatedStats
	if err := row.Scan(&stats.TotalRequests, &stats.SuccessCount, &stats.FailureCount,
		&stats.DegradedCount, &stats.TotalTokens); err != nil {
		return nil, fmt.Errorf("failed to query global stats: %w", err)
	}
	return &stats, nil
}

func (b *PostgresBackend) QueryDailyStats(ctx context.Context, since time.Time) ([]DailyStats, error) {
	rows, err := b.pool.Query(ctx, `
		SELECT
			TO_CHAR(DATE(requested_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD') AS day,
			COUNT(*),
			COALESCE(SUM(total_tokens), 0)::BIGINT
		FROM usage_records
		WHERE requested_at >= $1
		GROUP BY day
		ORDER BY day
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var results []DailyStats
	for rows.Next() {
		var d DailyStats
		if err := rows.Scan(&d.Day, &d.Requests, &d.Tokens); err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

func (b *PostgresBackend) QueryModelStats(ctx context.Context, since time.Time) ([]ModelStats, error) {
	rows, err := b.pool.Query(ctx, `
		SELECT
			COALESCE(NULLIF(model, ''), 'unknown') AS model,
			COALESCE(NULLIF(provider, ''), 'unknown') AS provider,
			COUNT(*) AS requests,
			COUNT(*) FILTER (WHERE NOT failed),
			COUNT(*) FILTER (WHERE failed),
			COALESCE(SUM(prompt_tokens), 0)::BIGINT,
			COALESCE(SUM(output_tokens), 0)::BIGINT,
			COALESCE(SUM(total_tokens), 0)::BIGINT,
			COALESCE(AVG(latency_ms), 0)::BIGINT
		FROM usage_records
		WHERE requested_at >= $1
		GROUP BY 1, 2
		ORDER BY requests DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query model stats: %w", err)
	}
	defer rows.Close()

	var results []ModelStats
	for rows.Next() {
		var ms ModelStats
		if err := rows.Scan(
			&ms.Model, &ms.Provider, &ms.Requests, &ms.SuccessCount, &ms.FailureCount,
			&ms.InputTokens, &ms.OutputTokens, &ms.TotalTokens, &ms.AvgLatencyMs,
		); err != nil {
			return nil, err
		}
		results = append(results, ms)
	}
	return results, rows.Err()
}

func (b *PostgresBackend) QueryOperationStats(ctx context.Context, since time.Time) ([]OperationStats, error) {
	rows, err := b.pool.Query(ctx, `
		SELECT
			operation,
			COUNT(*) AS requests,
			COUNT(*) FILTER (WHERE NOT failed),
			COUNT(*) FILTER (WHERE failed),
			COUNT(*) FILTER (WHERE degraded),
			COALESCE(SUM(total_tokens), 0)::BIGINT,
			COALESCE(AVG(latency_ms), 0)::BIGINT
		FROM usage_records
		WHERE requested_at >= $1
		GROUP BY operation
		ORDER BY requests DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query operation stats: %w", err)
	}
	defer rows.Close()

	var results []OperationStats
	for rows.Next() {
		var st OperationStats
		if err := rows.Scan(
			&st.Operation, &st.Requests, &st.SuccessCount, &st.FailureCount,
			&st.DegradedCount, &st.TotalTokens, &st.AvgLatencyMs,
		); err != nil {
			return nil, err
		}
		results = append(results, st)
	}
	return results, rows.Err()
}

func (b *PostgresBackend) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	tag, err := b.pool.Exec(ctx, `DELETE FROM usage_records WHERE requested_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// writeBatch streams records with COPY.
func (b *PostgresBackend) writeBatch(ctx context.Context, records []UsageRecord) error {
	columns := []string{
		"operation", "model", "provider", "requested_at", "failed", "degraded",
		"latency_ms", "prompt_tokens", "output_tokens", "total_tokens",
	}
	_, err := b.pool.CopyFrom(ctx, pgx.Identifier{"usage_records"}, columns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{
				r.Operation, r.Model, r.Provider, r.RequestedAt, r.Failed, r.Degraded,
				r.LatencyMs, r.PromptTokens, r.OutputTokens, r.TotalTokens,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy usage records: %w", err)
	}
	return nil
}
