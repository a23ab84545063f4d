package providers

// zeroshot.go - Zero-shot label classification using Hugot/ONNX
//
// Wraps an NLI model (facebook/bart-large-mnli class) behind the
// LabelClassifier interface. The same session serves every candidate-label
// set; one pipeline is built lazily per distinct set, since Hugot binds
// candidate labels at pipeline construction time.
//
// Architecture:
// - ONNX Runtime backend when available, pure Go backend as fallback
// - Session and pipelines created once on first use, reused for process life
// - Optional auto-download of model files on first-ever use

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/backends"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
)

// DefaultZeroShotRepo is the HuggingFace repository for the default NLI model.
const DefaultZeroShotRepo = "facebook/bart-large-mnli"

// DefaultHypothesisTemplate is the NLI hypothesis used to frame each candidate label.
const DefaultHypothesisTemplate = "This example is {}."

// ZeroShotConfig configures the zero-shot classifier.
type ZeroShotConfig struct {
	// ModelPath is the directory holding model.onnx and tokenizer files.
	ModelPath string
	// ModelRepo is the HuggingFace repo used when AutoDownload is set and
	// ModelPath is empty or missing. Defaults to DefaultZeroShotRepo.
	ModelRepo string
	// OnnxLibraryPath points at the ONNX Runtime shared library. Empty means
	// use the pure Go backend.
	OnnxLibraryPath string
	// AutoDownload fetches the model on first use when it is not on disk.
	AutoDownload bool
	// HypothesisTemplate overrides DefaultHypothesisTemplate.
	HypothesisTemplate string
}

// ZeroShot is a lazily-initialized zero-shot classifier. The zero value is
// not usable; construct with NewZeroShot.
type ZeroShot struct {
	cfg ZeroShotConfig

	initOnce sync.Once
	initErr  error
	session  *hugot.Session

	mu    sync.Mutex
	pipes map[string]*pipelines.ZeroShotClassificationPipeline
}

// NewZeroShot creates a zero-shot classifier. No model is loaded until the
// first ClassifyLabels call.
func NewZeroShot(cfg ZeroShotConfig) *ZeroShot {
	if cfg.ModelRepo == "" {
		cfg.ModelRepo = DefaultZeroShotRepo
	}
	if cfg.HypothesisTemplate == "" {
		cfg.HypothesisTemplate = DefaultHypothesisTemplate
	}
	return &ZeroShot{
		cfg:   cfg,
		pipes: make(map[string]*pipelines.ZeroShotClassificationPipeline),
	}
}

// ClassifyLabels implements LabelClassifier.
func (z *ZeroShot) ClassifyLabels(ctx context.Context, text string, candidates []string) (RawClassification, error) {
	if len(candidates) == 0 {
		return RawClassification{}, fmt.Errorf("zero-shot: no candidate labels given")
	}
	// Degenerate input: the contract requires exactly one label even for
	// text that is empty after trimming. Skip the model entirely.
	if strings.TrimSpace(text) == "" {
		return RawClassification{Label: candidates[0], Confidence: 0.0}, nil
	}

	z.initOnce.Do(z.initialize)
	if z.initErr != nil {
		return RawClassification{}, fmt.Errorf("%w: %w", ErrUnavailable, z.initErr)
	}

	pipe, err := z.pipelineFor(candidates)
	if err != nil {
		return RawClassification{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	out, err := runCancellable(ctx, func() (*pipelines.ZeroShotOutput, error) {
		return pipe.RunPipeline([]string{text})
	})
	if err != nil {
		if ctx.Err() != nil {
			return RawClassification{}, err
		}
		return RawClassification{}, fmt.Errorf("%w: zero-shot inference: %w", ErrUnavailable, err)
	}
	if len(out.ClassificationOutputs) == 0 || len(out.ClassificationOutputs[0].SortedValues) == 0 {
		return RawClassification{}, fmt.Errorf("%w: zero-shot returned no output", ErrUnavailable)
	}

	best := out.ClassificationOutputs[0].SortedValues[0]
	return RawClassification{Label: best.Key, Confidence: best.Value}, nil
}

// initialize creates the session and ensures the model is on disk.
func (z *ZeroShot) initialize() {
	if z.cfg.ModelPath == "" || !modelOnDisk(z.cfg.ModelPath) {
		if !z.cfg.AutoDownload {
			z.initErr = fmt.Errorf("zero-shot model not found at %q (auto-download disabled)", z.cfg.ModelPath)
			return
		}
		dir := z.cfg.ModelPath
		if dir == "" {
			dir = "./models"
		}
		slog.Info("zero-shot model not found, downloading", "repo", z.cfg.ModelRepo)
		path, err := hugot.DownloadModel(z.cfg.ModelRepo, dir, hugot.NewDownloadOptions())
		if err != nil {
			z.initErr = fmt.Errorf("zero-shot model download: %w", err)
			return
		}
		z.cfg.ModelPath = path
		slog.Info("zero-shot model downloaded", "path", path)
	}

	session, err := newSession(z.cfg.OnnxLibraryPath)
	if err != nil {
		z.initErr = err
		return
	}
	z.session = session
}

// pipelineFor returns the pipeline bound to the given candidate set,
// creating it on first use. Hugot fixes labels per pipeline, so distinct
// sets (safety axis, tone axis, scam labels) get distinct pipelines on the
// shared session.
func (z *ZeroShot) pipelineFor(candidates []string) (*pipelines.ZeroShotClassificationPipeline, error) {
	key := strings.Join(candidates, "\x00")

	z.mu.Lock()
	defer z.mu.Unlock()

	if pipe, ok := z.pipes[key]; ok {
		return pipe, nil
	}

	config := hugot.ZeroShotClassificationConfig{
		ModelPath: z.cfg.ModelPath,
		Name:      fmt.Sprintf("zeroshot-%d", len(z.pipes)),
		Options: []backends.PipelineOption[*pipelines.ZeroShotClassificationPipeline]{
			pipelines.WithLabels(candidates),
			pipelines.WithHypothesisTemplate(z.cfg.HypothesisTemplate),
			pipelines.WithMultilabel(false),
		},
	}
	pipe, err := hugot.NewPipeline(z.session, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create zero-shot pipeline: %w", err)
	}
	z.pipes[key] = pipe
	return pipe, nil
}

// Close releases the underlying session.
func (z *ZeroShot) Close() error {
	if z.session != nil {
		return z.session.Destroy()
	}
	return nil
}

// newSession creates a Hugot session, preferring the ONNX Runtime backend
// and falling back to the pure Go backend.
func newSession(onnxLibraryPath string) (*hugot.Session, error) {
	if onnxLibraryPath != "" {
		session, err := hugot.NewORTSession(options.WithOnnxLibraryPath(onnxLibraryPath))
		if err == nil {
			slog.Info("using ONNX Runtime backend")
			return session, nil
		}
		slog.Warn("ONNX Runtime unavailable, falling back to Go backend", "error", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create Go session: %w", err)
	}
	slog.Info("using pure Go backend (slower, consider installing ONNX Runtime)")
	return session, nil
}

// modelOnDisk reports whether a usable ONNX model exists at path.
func modelOnDisk(path string) bool {
	if _, err := os.Stat(filepath.Join(path, "model.onnx")); err != nil {
		return false
	}
	if _, err := os.Stat(filepath.Join(path, "tokenizer.json")); err != nil {
		return false
	}
	return true
}

// runCancellable runs fn on its own goroutine and abandons it when ctx is
// cancelled. Hugot pipelines take no context, but a hung inference call must
// not block the caller past its deadline; the goroutine is left to finish
// and its result discarded.
func runCancellable[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type outcome struct {
		val T
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		v, err := fn()
		ch <- outcome{val: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case o := <-ch:
		return o.val, o.err
	}
}
