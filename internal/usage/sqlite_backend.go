package usage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteTimeLayout sorts lexically and is understood by DATE().
const sqliteTimeLayout = "2006-01-02 15:04:05.000"

func sqliteTime(t time.Time) string { return t.UTC().Format(sqliteTimeLayout) }

// SQLiteBackend implements Backend on a local SQLite file.
type SQLiteBackend struct {
	db     *sql.DB
	writer *batchWriter
	dbPath string
}

func initSQLiteSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS usage_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		operation TEXT NOT NULL,
		model TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL DEFAULT '',
		requested_at TEXT NOT NULL,
		failed BOOLEAN NOT NULL DEFAULT 0,
		degraded BOOLEAN NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		prompt_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		total_tokens INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_usage_requested_at ON usage_records(requested_at);
	CREATE INDEX IF NOT EXISTS idx_usage_operation ON usage_records(operation);
	CREATE INDEX IF NOT EXISTS idx_usage_model ON usage_records(model);
	`)
	return err
}

// NewSQLiteBackend opens (or creates) the database at dbPath.
// The backend must be started with Start() before use.
func NewSQLiteBackend(dbPath string, cfg BackendConfig) (*SQLiteBackend, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	b := &SQLiteBackend{db: db, dbPath: dbPath}
	b.writer = newBatchWriter("sqlite", cfg, b.writeBatch, b.Cleanup)
	return b, nil
}

func (b *SQLiteBackend) Start() error {
	b.writer.start()
	return nil
}

func (b *SQLiteBackend) Stop() error {
	if b == nil {
		return nil
	}
	if !b.writer.stop() {
		return nil
	}
	return b.db.Close()
}

func (b *SQLiteBackend) Enqueue(record UsageRecord) {
	if b == nil {
		return
	}
	b.writer.enqueue(record)
}

func (b *SQLiteBackend) Flush(ctx context.Context) error {
	if b == nil {
		return nil
	}
	return b.writer.flush(ctx)
}

// DBPath returns the filesystem path to the SQLite database.
func (b *SQLiteBackend) DBPath() string {
	if b == nil {
		return ""
	}
	return b.dbPath
}

func (b *SQLiteBackend) QueryGlobalStats(ctx context.Context, since time.Time) (*AggregatedStats, error) {
	row := b.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN failed = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN failed = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN degraded = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(total_tokens), 0)
		FROM usage_records
		WHERE requested_at >= ?
	`, sqliteTime(since))

	var stats AggregatedStats
	if err := row.Scan(&stats.TotalRequests, &stats.SuccessCount, &stats.FailureCount,
		&stats.DegradedCount, &stats.TotalTokens); err != nil {
		return nil, fmt.Errorf("failed to query global stats: %w", err)
	}
	return &stats, nil
}

func (b *SQLiteBackend) QueryDailyStats(ctx context.Context, since time.Time) ([]DailyStats, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT
			DATE(requested_at) AS day,
			COUNT(*) AS requests,
			COALESCE(SUM(total_tokens), 0) AS tokens
		FROM usage_records
		WHERE requested_at >= ?
		GROUP BY day
		HAVING day IS NOT NULL
		ORDER BY day
	`, sqliteTime(since))
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

func (b *SQLiteBackend) QueryModelStats(ctx context.Context, since time.Time) ([]ModelStats, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT
			COALESCE(NULLIF(model, ''), 'unknown') AS model,
			COALESCE(NULLIF(provider, ''), 'unknown') AS provider,
			COUNT(*) AS requests,
			SUM(CASE WHEN failed = 0 THEN 1 ELSE 0 END),
			SUM(CASE WHEN failed = 1 THEN 1 ELSE 0 END),
			COALESCE(SUM(prompt_tokens), 0),
			COALESCE(SUM(output_tokens), 0),
			COALESCE(SUM(total_tokens), 0),
			CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER)
		FROM usage_records
		WHERE requested_at >= ?
		GROUP BY 1, 2
		ORDER BY requests DESC
	`, sqliteTime(since))
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

func (b *SQLiteBackend) QueryOperationStats(ctx context.Context, since time.Time) ([]OperationStats, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT
			operation,
			COUNT(*) AS requests,
			SUM(CASE WHEN failed = 0 THEN 1 ELSE 0 END),
			SUM(CASE WHEN failed = 1 THEN 1 ELSE 0 END),
			SUM(CASE WHEN degraded = 1 THEN 1 ELSE 0 END),
			COALESCE(SUM(total_tokens), 0),
			CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER)
		FROM usage_records
		WHERE requested_at >= ?
		GROUP BY operation
		ORDER BY requests DESC
	`, sqliteTime(since))
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

// Cleanup removes records older than before.
func (b *SQLiteBackend) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	result, err := b.db.ExecContext(ctx, `DELETE FROM usage_records WHERE requested_at < ?`, sqliteTime(before))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// writeBatch inserts records in a single transaction.
func (b *SQLiteBackend) writeBatch(ctx context.Context, records []UsageRecord) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO usage_records (
			operation, model, provider, requested_at, failed, degraded,
			latency_ms, prompt_tokens, output_tokens, total_tokens
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Operation, r.Model, r.Provider, sqliteTime(r.RequestedAt), r.Failed, r.Degraded,
			r.LatencyMs, r.PromptTokens, r.OutputTokens, r.TotalTokens,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
