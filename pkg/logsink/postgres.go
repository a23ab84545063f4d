package logsink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createAnalysesTable = `
CREATE TABLE IF NOT EXISTS analyses (
	id UUID PRIMARY KEY,
	analyzed_at TIMESTAMPTZ NOT NULL,
	text TEXT NOT NULL,
	safety_label TEXT NOT NULL,
	safety_confidence DOUBLE PRECISION NOT NULL,
	tone_label TEXT NOT NULL,
	tone_confidence DOUBLE PRECISION NOT NULL,
	toxicity_score DOUBLE PRECISION NOT NULL,
	toxicity_flag BOOLEAN NOT NULL,
	scam_score DOUBLE PRECISION NOT NULL,
	scam_flag BOOLEAN NOT NULL,
	template TEXT NOT NULL,
	feedback TEXT NOT NULL
)`

const insertAnalysis = `
INSERT INTO analyses (
	id, analyzed_at, text,
	safety_label, safety_confidence, tone_label, tone_confidence,
	toxicity_score, toxicity_flag, scam_score, scam_flag,
	template, feedback
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

// PostgresSink appends analysis rows to a Postgres table, for deployments
// where a school district already runs a database for reporting.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink connects to Postgres and ensures the analyses table
// exists.
func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create Postgres pool: %w", err)
	}
	if _, err := pool.Exec(ctx, createAnalysesTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure analyses table: %w", err)
	}
	return &PostgresSink{pool: pool}, nil
}

// Append implements Sink.
func (s *PostgresSink) Append(ctx context.Context, rec Record) error {
	_, err := s.pool.Exec(ctx, insertAnalysis,
		rec.ID, rec.Timestamp, rec.Text,
		rec.SafetyLabel, rec.SafetyConfidence, rec.ToneLabel, rec.ToneConfidence,
		rec.ToxicityScore, rec.ToxicityFlag, rec.ScamScore, rec.ScamFlag,
		rec.Template, rec.Feedback,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis row: %w", err)
	}
	return nil
}

// Close implements Sink.
func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}
