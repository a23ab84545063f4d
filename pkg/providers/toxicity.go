package providers

// toxicity.go - Toxicity scoring using Hugot/ONNX
//
// Wraps a multi-label toxicity classifier (unitary/toxic-bert class) behind
// the Scorer interface. The score is the probability of the "toxic" label;
// when the model exposes no label by that name, the maximum label score is
// used instead so an unconventional label set still yields a usable signal.

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/backends"
	"github.com/knights-analytics/hugot/pipelines"
)

// DefaultToxicityRepo is the HuggingFace repository for the default toxicity model.
const DefaultToxicityRepo = "unitary/toxic-bert"

// ToxicityConfig configures the local toxicity scorer.
type ToxicityConfig struct {
	ModelPath       string
	ModelRepo       string
	OnnxLibraryPath string
	AutoDownload    bool
	// ToxicLabel is the label whose score is returned. Defaults to "toxic".
	ToxicLabel string
}

// Toxicity is a lazily-initialized toxicity scorer backed by a local ONNX
// model. Construct with NewToxicity.
type Toxicity struct {
	cfg ToxicityConfig

	initOnce sync.Once
	initErr  error
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

// NewToxicity creates a toxicity scorer. No model is loaded until the first
// Score call.
func NewToxicity(cfg ToxicityConfig) *Toxicity {
	if cfg.ModelRepo == "" {
		cfg.ModelRepo = DefaultToxicityRepo
	}
	if cfg.ToxicLabel == "" {
		cfg.ToxicLabel = "toxic"
	}
	return &Toxicity{cfg: cfg}
}

// Score implements Scorer. The returned value is in [0,1].
func (t *Toxicity) Score(ctx context.Context, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0.0, nil
	}

	t.initOnce.Do(t.initialize)
	if t.initErr != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, t.initErr)
	}

	out, err := runCancellable(ctx, func() (*pipelines.TextClassificationOutput, error) {
		return t.pipeline.RunPipeline([]string{text})
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: toxicity inference: %w", ErrUnavailable, err)
	}
	if len(out.ClassificationOutputs) == 0 || len(out.ClassificationOutputs[0]) == 0 {
		return 0, fmt.Errorf("%w: toxicity model returned no output", ErrUnavailable)
	}

	scores := out.ClassificationOutputs[0]
	var maxScore float64
	for _, s := range scores {
		if strings.EqualFold(s.Label, t.cfg.ToxicLabel) {
			return float64(s.Score), nil
		}
		if float64(s.Score) > maxScore {
			maxScore = float64(s.Score)
		}
	}
	return maxScore, nil
}

func (t *Toxicity) initialize() {
	if t.cfg.ModelPath == "" || !modelOnDisk(t.cfg.ModelPath) {
		if !t.cfg.AutoDownload {
			t.initErr = fmt.Errorf("toxicity model not found at %q (auto-download disabled)", t.cfg.ModelPath)
			return
		}
		dir := t.cfg.ModelPath
		if dir == "" {
			dir = "./models"
		}
		slog.Info("toxicity model not found, downloading", "repo", t.cfg.ModelRepo)
		path, err := hugot.DownloadModel(t.cfg.ModelRepo, dir, hugot.NewDownloadOptions())
		if err != nil {
			t.initErr = fmt.Errorf("toxicity model download: %w", err)
			return
		}
		t.cfg.ModelPath = path
		slog.Info("toxicity model downloaded", "path", path)
	}

	session, err := newSession(t.cfg.OnnxLibraryPath)
	if err != nil {
		t.initErr = err
		return
	}

	config := hugot.TextClassificationConfig{
		ModelPath: t.cfg.ModelPath,
		Name:      "toxicity-scorer",
		Options: []backends.PipelineOption[*pipelines.TextClassificationPipeline]{
			pipelines.WithMultiLabel(),
		},
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		_ = session.Destroy()
		t.initErr = fmt.Errorf("failed to create toxicity pipeline: %w", err)
		return
	}

	t.session = session
	t.pipeline = pipeline
}

// Close releases the underlying session.
func (t *Toxicity) Close() error {
	if t.session != nil {
		return t.session.Destroy()
	}
	return nil
}
