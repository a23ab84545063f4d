// Package providers wraps the pretrained inference capabilities used for
// message analysis: zero-shot label classification, toxicity scoring, and
// scam-likelihood scoring. Each provider is a black box that takes text and
// returns a raw label or score; normalization into canonical judgments
// happens downstream, never here.
//
// Providers lazily initialize their underlying inference resource on first
// use. Initialization is idempotent and safe for concurrent callers
// (initialize-once-use-many). A provider that cannot reach its resource
// returns an error wrapping ErrUnavailable; it never fabricates a score.
package providers

import (
	"context"
	"errors"
)

// ErrUnavailable indicates an underlying inference resource could not be
// initialized or invoked. Check with errors.Is.
var ErrUnavailable = errors.New("model provider unavailable")

// RawClassification is the provider-boundary output of a label classifier,
// before normalization into a canonical judgment.
type RawClassification struct {
	// Label is the best-matching candidate label, verbatim as passed in.
	Label string `json:"label"`
	// Confidence is the model's confidence for Label, in [0,1].
	Confidence float64 `json:"confidence"`
}

// LabelClassifier assigns one label from a caller-supplied candidate set to
// the given text. Implementations must return exactly one candidate, even
// for degenerate input (empty after trimming), in which case they return
// the first candidate with confidence 0.0 instead of invoking the model.
type LabelClassifier interface {
	ClassifyLabels(ctx context.Context, text string, candidates []string) (RawClassification, error)
}

// Scorer produces a single continuous score in [0,1] for the given text,
// higher meaning more concerning.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}
