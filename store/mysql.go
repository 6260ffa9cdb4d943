// Package store is the result sink (component M): durable JudgeResult
// storage in MySQL and an ephemeral progress cache in Redis, grounded on
// judged/fetcher.go's MySQLFetcher/RedisFetcher pair — generalized from
// that daemon's job-queue polling to this core's write-side result
// persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/hotwords123/judge-v3/types"
)

// ResultSink durably persists a submission's finished JudgeResult.
type ResultSink struct {
	db *sql.DB
}

// OpenResultSink connects to dsn (a go-sql-driver/mysql DSN, e.g.
// "user:pass@tcp(host:3306)/dbname?parseTime=true") and verifies it with
// a ping, the same open/configure/ping sequence as
// judged/fetcher.go's NewMySQLFetcher.
func OpenResultSink(dsn string) (*ResultSink, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open result sink: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping result sink: %w", err)
	}
	return &ResultSink{db: db}, nil
}

// EnsureSchema creates the judge_results table if it doesn't already
// exist. Called once at startup; a real deployment would instead run
// this as a migration, but the core has no migration runner of its own.
func (s *ResultSink) EnsureSchema(ctx context.Context) error {
	const stmt = `
CREATE TABLE IF NOT EXISTS judge_results (
	submission_id VARCHAR(64) NOT NULL PRIMARY KEY,
	result        JSON NOT NULL,
	finished_at   DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
)`
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

// Save upserts submissionID's finished JudgeResult, JSON-encoded.
func (s *ResultSink) Save(ctx context.Context, submissionID string, result *types.JudgeResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal judge result for %q: %w", submissionID, err)
	}

	const stmt = `
INSERT INTO judge_results (submission_id, result, finished_at, updated_at)
VALUES (?, ?, NOW(), NOW())
ON DUPLICATE KEY UPDATE result = VALUES(result), updated_at = NOW()`
	if _, err := s.db.ExecContext(ctx, stmt, submissionID, raw); err != nil {
		return fmt.Errorf("save judge result for %q: %w", submissionID, err)
	}
	return nil
}

// Load fetches a previously-saved JudgeResult, returning sql.ErrNoRows
// when submissionID has never been saved.
func (s *ResultSink) Load(ctx context.Context, submissionID string) (*types.JudgeResult, error) {
	var raw []byte
	const stmt = `SELECT result FROM judge_results WHERE submission_id = ?`
	if err := s.db.QueryRowContext(ctx, stmt, submissionID).Scan(&raw); err != nil {
		return nil, err
	}

	var result types.JudgeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unmarshal judge result for %q: %w", submissionID, err)
	}
	return &result, nil
}

// Close releases the underlying connection pool.
func (s *ResultSink) Close() error {
	return s.db.Close()
}
