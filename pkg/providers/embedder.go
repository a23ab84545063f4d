package providers

// embedder.go - Local embedding model using Hugot/ONNX
//
// Feature-extraction pipeline over a small sentence-transformer
// (all-MiniLM-L6-v2, ~80MB, 384 dimensions). Used by the semantic scam
// scorer to embed seed phrases and incoming text for an in-memory
// chromem-go collection.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/philippgille/chromem-go"
)

// DefaultEmbeddingRepo is the HuggingFace repository for the default embedding model.
const DefaultEmbeddingRepo = "sentence-transformers/all-MiniLM-L6-v2"

// EmbedderConfig configures the local embedder.
type EmbedderConfig struct {
	ModelPath       string
	ModelRepo       string
	OnnxLibraryPath string
	AutoDownload    bool
}

// Embedder generates text embeddings with a local ONNX model. Construct
// with NewEmbedder; the model is loaded on first use.
type Embedder struct {
	cfg EmbedderConfig

	initOnce sync.Once
	initErr  error
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
}

// NewEmbedder creates a lazily-initialized embedder.
func NewEmbedder(cfg EmbedderConfig) *Embedder {
	if cfg.ModelRepo == "" {
		cfg.ModelRepo = DefaultEmbeddingRepo
	}
	return &Embedder{cfg: cfg}
}

// Embed generates an embedding for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.initOnce.Do(e.initialize)
	if e.initErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, e.initErr)
	}

	out, err := runCancellable(ctx, func() (*pipelines.FeatureExtractionOutput, error) {
		return e.pipeline.RunPipeline([]string{text})
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: embedding generation: %w", ErrUnavailable, err)
	}
	if len(out.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrUnavailable)
	}
	return out.Embeddings[0], nil
}

// EmbeddingFunc adapts the embedder to chromem-go's embedding interface.
func (e *Embedder) EmbeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return e.Embed(ctx, text)
	}
}

func (e *Embedder) initialize() {
	if e.cfg.ModelPath == "" || !modelOnDisk(e.cfg.ModelPath) {
		if !e.cfg.AutoDownload {
			e.initErr = fmt.Errorf("embedding model not found at %q (auto-download disabled)", e.cfg.ModelPath)
			return
		}
		dir := e.cfg.ModelPath
		if dir == "" {
			dir = "./models"
		}
		slog.Info("embedding model not found, downloading", "repo", e.cfg.ModelRepo)
		path, err := hugot.DownloadModel(e.cfg.ModelRepo, dir, hugot.NewDownloadOptions())
		if err != nil {
			e.initErr = fmt.Errorf("embedding model download: %w", err)
			return
		}
		e.cfg.ModelPath = path
	}

	session, err := newSession(e.cfg.OnnxLibraryPath)
	if err != nil {
		e.initErr = err
		return
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: e.cfg.ModelPath,
		Name:      "seed-embedder",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		_ = session.Destroy()
		e.initErr = fmt.Errorf("failed to create embedding pipeline: %w", err)
		return
	}

	e.session = session
	e.pipeline = pipeline
}

// Close releases the underlying session.
func (e *Embedder) Close() error {
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}
