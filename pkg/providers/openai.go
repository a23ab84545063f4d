package providers

// openai.go - Remote toxicity scoring via the OpenAI moderation endpoint
//
// Alternative to the local ONNX toxicity model for hosts without an ONNX
// runtime or the disk for model files. Selected by config; the local and
// remote scorers are interchangeable behind the Scorer interface.

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// RemoteToxicityConfig configures the moderation-backed toxicity scorer.
type RemoteToxicityConfig struct {
	APIKey string
	// Model is the moderation model name. Defaults to omni-moderation-latest.
	Model string
}

// RemoteToxicity scores toxicity with the OpenAI moderation endpoint.
type RemoteToxicity struct {
	client *openai.Client
	model  string
}

// NewRemoteToxicity creates a moderation-backed toxicity scorer.
func NewRemoteToxicity(cfg RemoteToxicityConfig) *RemoteToxicity {
	model := cfg.Model
	if model == "" {
		model = openai.ModerationOmniLatest
	}
	return &RemoteToxicity{
		client: openai.NewClient(cfg.APIKey),
		model:  model,
	}
}

// Score implements Scorer. The returned value is the highest score among
// the moderation categories that correspond to toxic language.
func (r *RemoteToxicity) Score(ctx context.Context, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0.0, nil
	}

	resp, err := r.client.Moderations(ctx, openai.ModerationRequest{
		Input: text,
		Model: r.model,
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: moderation request: %w", ErrUnavailable, err)
	}
	if len(resp.Results) == 0 {
		return 0, fmt.Errorf("%w: moderation returned no results", ErrUnavailable)
	}

	scores := resp.Results[0].CategoryScores
	toxic := []float64{
		float64(scores.Hate),
		float64(scores.HateThreatening),
		float64(scores.Harassment),
		float64(scores.HarassmentThreatening),
		float64(scores.Violence),
		float64(scores.ViolenceGraphic),
	}

	var max float64
	for _, s := range toxic {
		if s > max {
			max = s
		}
	}
	return clamp01(max), nil
}
