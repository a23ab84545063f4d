// Package logsink holds the optional logging collaborators that persist
// analysis rows. Sinks are best-effort: a sink failure is the caller's to
// log, never a reason to fail the analysis itself. No sink is consulted on
// the analysis path; nothing here feeds back into classification.
package logsink

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/edushield-ai/edushield/pkg/analysis"
)

// Record is one logged analysis row, flattened so every sink can persist
// the same fields.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`

	SafetyLabel      string  `json:"safety_label"`
	SafetyConfidence float64 `json:"safety_confidence"`
	ToneLabel        string  `json:"tone_label"`
	ToneConfidence   float64 `json:"tone_confidence"`

	ToxicityScore float64 `json:"toxicity_score"`
	ToxicityFlag  bool    `json:"toxicity_flag"`
	ScamScore     float64 `json:"scam_score"`
	ScamFlag      bool    `json:"scam_flag"`

	Template string `json:"template"`
	Feedback string `json:"feedback"`
}

// NewRecord flattens a feedback result into a loggable row.
func NewRecord(fb *analysis.Feedback) Record {
	r := fb.Result
	return Record{
		ID:               r.ID,
		Timestamp:        r.AnalyzedAt,
		Text:             r.Text,
		SafetyLabel:      r.Safety.Label.String(),
		SafetyConfidence: r.Safety.Confidence,
		ToneLabel:        r.Tone.Label.String(),
		ToneConfidence:   r.Tone.Confidence,
		ToxicityScore:    r.Toxicity.Score,
		ToxicityFlag:     r.Toxicity.AboveThreshold,
		ScamScore:        r.Scam.Score,
		ScamFlag:         r.Scam.AboveThreshold,
		Template:         string(fb.Template),
		Feedback:         fb.Message,
	}
}

// Sink appends analysis records somewhere durable.
type Sink interface {
	Append(ctx context.Context, rec Record) error
	Close() error
}

// Multi fans one record out to several sinks, collecting the first error
// after trying all of them.
type Multi struct {
	sinks []Sink
}

// NewMulti creates a fan-out sink. Nil entries are skipped.
func NewMulti(sinks ...Sink) *Multi {
	var kept []Sink
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Multi{sinks: kept}
}

// Append implements Sink.
func (m *Multi) Append(ctx context.Context, rec Record) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Append(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close implements Sink.
func (m *Multi) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Len returns the number of active sinks.
func (m *Multi) Len() int {
	return len(m.sinks)
}
