// Package analysis implements the classification-and-feedback pipeline:
// raw text goes through independent model providers, their heterogeneous
// outputs are normalized into a unified result record, and a feedback
// message is selected from that record by fixed priority rules.
package analysis

import (
	"time"

	"github.com/google/uuid"
)

// Axis is one independent categorical judgment dimension.
type Axis string

const (
	// AxisSafety judges Safe vs Risky behavior.
	AxisSafety Axis = "safety"
	// AxisTone judges Respectful vs Disrespectful tone.
	AxisTone Axis = "tone"
)

// Kind is one continuous-scale check.
type Kind string

const (
	// KindToxicity estimates how harmful/abusive the text is.
	KindToxicity Kind = "toxicity"
	// KindScam estimates how likely the text is a fraud attempt.
	KindScam Kind = "scam"
)

// Label is a canonical per-axis classification outcome.
type Label string

const (
	LabelSafe          Label = "safe"
	LabelRisky         Label = "risky"
	LabelRespectful    Label = "respectful"
	LabelDisrespectful Label = "disrespectful"
)

// String returns the string representation of a Label.
func (l Label) String() string {
	return string(l)
}

// CategoryJudgment is the normalized result of one categorical axis.
type CategoryJudgment struct {
	Axis  Axis  `json:"axis"`
	Label Label `json:"label"`
	// Confidence is in [0,1]; 0.0 for the degenerate-input fallback.
	Confidence float64 `json:"confidence"`
}

// ScoreJudgment is the normalized result of one continuous check.
type ScoreJudgment struct {
	Kind Kind `json:"kind"`
	// Score is in [0,1], higher meaning more concerning.
	Score float64 `json:"score"`
	// AboveThreshold is score >= threshold[kind], boundary inclusive.
	AboveThreshold bool `json:"above_threshold"`
}

// Result aggregates one judgment per axis and per kind for a single
// analysis call, plus the original text. Treat as immutable once
// constructed; nothing mutates it after Analyze returns.
type Result struct {
	// ID identifies this analysis for log sinks. Fresh per call.
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`

	Safety CategoryJudgment `json:"safety"`
	Tone   CategoryJudgment `json:"tone"`

	Toxicity ScoreJudgment `json:"toxicity"`
	Scam     ScoreJudgment `json:"scam"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// Category returns the judgment for the given axis.
func (r *Result) Category(axis Axis) CategoryJudgment {
	if axis == AxisTone {
		return r.Tone
	}
	return r.Safety
}

// Score returns the judgment for the given kind.
func (r *Result) Score(kind Kind) ScoreJudgment {
	if kind == KindScam {
		return r.Scam
	}
	return r.Toxicity
}

// TemplateKind identifies which feedback branch was selected.
type TemplateKind string

const (
	TemplateScamWarning     TemplateKind = "scam_warning"
	TemplateToxicityWarning TemplateKind = "toxicity_warning"
	TemplateRiskyBehavior   TemplateKind = "risky_behavior"
	TemplateDisrespectful   TemplateKind = "disrespectful_tone"
	TemplateAffirming       TemplateKind = "affirming"
)

// Feedback is the rendered feedback message plus the result it was derived
// from. One per analysis call; immutable.
type Feedback struct {
	Message  string       `json:"message"`
	Template TemplateKind `json:"template"`
	Result   Result       `json:"result"`
}
