package analysis

// analyzer.go - Analysis facade
//
// The single entry point for the presentation layer. Validates input,
// fans out to the three model providers, normalizes their outputs, and
// selects feedback. The three provider calls have no data dependency and
// run concurrently; sequential execution would produce identical values.
// Any provider failure fails the whole call; no partial result is ever
// returned. No caching, no retries: every call re-invokes the providers.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/edushield-ai/edushield/pkg/providers"
)

// Options is the configuration surface consumed by the core: candidate
// label sets, per-kind thresholds, input cap, and feedback templates.
// Immutable after startup.
type Options struct {
	MaxInputLength int
	Thresholds     Thresholds
	Labels         LabelConfig
	Templates      Templates
}

// DefaultOptions returns the recognized defaults for every option.
func DefaultOptions() Options {
	return Options{
		MaxInputLength: DefaultMaxInputLength,
		Thresholds:     DefaultThresholds(),
		Labels:         DefaultLabelConfig(),
		Templates:      DefaultTemplates(),
	}
}

// Analyzer coordinates the model providers, the normalizer, and the
// feedback selector. Construct once with NewAnalyzer and reuse; it is safe
// for concurrent use, though the system is designed around one interactive
// user at a time.
type Analyzer struct {
	opts     Options
	labels   providers.LabelClassifier
	toxicity providers.Scorer
	scam     providers.Scorer
	selector *Selector
}

// NewAnalyzer creates the facade over the three providers.
func NewAnalyzer(opts Options, labels providers.LabelClassifier, toxicity, scam providers.Scorer) *Analyzer {
	if opts.MaxInputLength <= 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}
	if len(opts.Labels.Safety.Candidates) == 0 {
		opts.Labels = DefaultLabelConfig()
	}
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds()
	}
	return &Analyzer{
		opts:     opts,
		labels:   labels,
		toxicity: toxicity,
		scam:     scam,
		selector: NewSelector(opts.Templates),
	}
}

// Analyze runs the full pipeline on one message. Returns ErrInvalidInput
// for text that fails validation (the providers are never invoked), or
// ErrAnalysisFailed wrapping the originating provider error.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*Feedback, error) {
	clean, err := SanitizeInput(text, a.opts.MaxInputLength)
	if err != nil {
		return nil, err
	}

	var (
		rawSafety providers.RawClassification
		rawTone   providers.RawClassification
		toxicity  float64
		scam      float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if rawSafety, err = a.labels.ClassifyLabels(gctx, clean, a.opts.Labels.Safety.CandidateList()); err != nil {
			return fmt.Errorf("safety classification: %w", err)
		}
		if rawTone, err = a.labels.ClassifyLabels(gctx, clean, a.opts.Labels.Tone.CandidateList()); err != nil {
			return fmt.Errorf("tone classification: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if toxicity, err = a.toxicity.Score(gctx, clean); err != nil {
			return fmt.Errorf("toxicity scoring: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if scam, err = a.scam.Score(gctx, clean); err != nil {
			return fmt.Errorf("scam scoring: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	result := Result{
		ID:         uuid.New(),
		Text:       clean,
		Safety:     NormalizeCategory(AxisSafety, a.opts.Labels.Safety, rawSafety),
		Tone:       NormalizeCategory(AxisTone, a.opts.Labels.Tone, rawTone),
		Toxicity:   NormalizeScore(KindToxicity, toxicity, a.opts.Thresholds.Toxicity),
		Scam:       NormalizeScore(KindScam, scam, a.opts.Thresholds.Scam),
		AnalyzedAt: time.Now().UTC(),
	}

	template, message := a.selector.Select(&result)
	return &Feedback{Message: message, Template: template, Result: result}, nil
}
