package analysis

// normalize.go - Signal normalizer
//
// Converts raw provider outputs (free-form label strings, float scores)
// into canonical CategoryJudgment/ScoreJudgment values. Raw heterogeneous
// shapes never leak past this boundary. Pure functions of the provider
// output and the injected configuration; no randomness, no hardcoded
// thresholds.

import (
	"strings"

	"github.com/edushield-ai/edushield/pkg/providers"
)

// AxisLabels binds an axis's canonical labels to the candidate strings
// handed to the zero-shot classifier. Labels and Candidates are
// index-aligned. Immutable after startup.
type AxisLabels struct {
	Labels     []Label  `yaml:"-"`
	Candidates []string `yaml:"candidates"`
	// Default is the fallback label for degenerate input or an
	// unrecognized raw label.
	Default Label `yaml:"default"`
}

// CandidateList returns a copy of the candidate strings, default first is
// not required; order only affects the degenerate-input fallback inside
// providers, which the facade never exercises.
func (a AxisLabels) CandidateList() []string {
	out := make([]string, len(a.Candidates))
	copy(out, a.Candidates)
	return out
}

// labelFor maps a raw candidate string back to its canonical label.
func (a AxisLabels) labelFor(raw string) (Label, bool) {
	for i, c := range a.Candidates {
		if strings.EqualFold(strings.TrimSpace(raw), c) && i < len(a.Labels) {
			return a.Labels[i], true
		}
	}
	return "", false
}

// LabelConfig holds the candidate label sets for both axes.
type LabelConfig struct {
	Safety AxisLabels `yaml:"safety"`
	Tone   AxisLabels `yaml:"tone"`
}

// DefaultLabelConfig returns the candidate sets matching the canonical
// Safe/Risky and Respectful/Disrespectful axes.
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{
		Safety: AxisLabels{
			Labels:     []Label{LabelSafe, LabelRisky},
			Candidates: []string{"safe behavior", "risky behavior"},
			Default:    LabelSafe,
		},
		Tone: AxisLabels{
			Labels:     []Label{LabelRespectful, LabelDisrespectful},
			Candidates: []string{"respectful", "disrespectful"},
			Default:    LabelRespectful,
		},
	}
}

// Thresholds holds the per-kind score cutoffs. Injected, never hardcoded
// in the normalizer, so callers and tests can vary them.
type Thresholds struct {
	Toxicity float64 `yaml:"toxicity"`
	Scam     float64 `yaml:"scam"`
}

// DefaultThresholds returns the recognized defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{Toxicity: 0.5, Scam: 0.5}
}

// For returns the threshold for the given kind.
func (t Thresholds) For(kind Kind) float64 {
	if kind == KindScam {
		return t.Scam
	}
	return t.Toxicity
}

// NormalizeCategory converts a raw classification into a canonical
// judgment. Confidences are clamped into [0,1] in case a provider returns
// a value marginally outside range from floating-point artifacts. A raw
// label that matches no configured candidate maps to the axis default with
// confidence 0.0.
func NormalizeCategory(axis Axis, labels AxisLabels, raw providers.RawClassification) CategoryJudgment {
	label, ok := labels.labelFor(raw.Label)
	if !ok {
		return CategoryJudgment{Axis: axis, Label: labels.Default, Confidence: 0.0}
	}
	return CategoryJudgment{Axis: axis, Label: label, Confidence: Clamp01(raw.Confidence)}
}

// NormalizeScore converts a raw score into a canonical judgment, applying
// the injected threshold. The boundary is inclusive: a score exactly at
// the threshold is above it.
func NormalizeScore(kind Kind, score, threshold float64) ScoreJudgment {
	clamped := Clamp01(score)
	return ScoreJudgment{
		Kind:           kind,
		Score:          clamped,
		AboveThreshold: clamped >= threshold,
	}
}

// Clamp01 clamps v into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
