package analysis

// selector.go - Feedback selector
//
// Chooses one feedback message for a Result. The priority order encodes a
// severity ranking (scam > toxicity > unsafe behavior > tone > none) and is
// a design decision, not an incidental default; first match wins.

import (
	"fmt"
	"strings"
)

// Templates holds the five feedback messages, one per selector branch.
// Recognized placeholders: {score} in the scam/toxicity templates, rendered
// from the triggering ScoreJudgment; {confidence} in the remaining
// templates, rendered from the triggering CategoryJudgment (the affirming
// branch renders the safety confidence).
type Templates struct {
	ScamWarning       string `yaml:"scam_warning"`
	ToxicityWarning   string `yaml:"toxicity_warning"`
	RiskyBehavior     string `yaml:"risky_behavior"`
	DisrespectfulTone string `yaml:"disrespectful_tone"`
	Affirming         string `yaml:"affirming"`
}

// DefaultTemplates returns the built-in feedback messages.
func DefaultTemplates() Templates {
	return Templates{
		ScamWarning:       "Careful! This looks like it could be a scam (likelihood {score}). Real offers never ask for passwords, codes, or payments up front.",
		ToxicityWarning:   "These words could really hurt someone (toxicity {score}). Let's find a kinder way to say it.",
		RiskyBehavior:     "Think twice: this choice could expose personal info or lead to unsafe interactions.",
		DisrespectfulTone: "Consider how this might make others feel. Let's try a more considerate approach.",
		Affirming:         "Great choice! This protects your privacy and keeps you safe online.",
	}
}

// Selector deterministically picks one feedback message per Result.
// Stateless beyond its templates; safe for concurrent use.
type Selector struct {
	templates Templates
}

// NewSelector creates a selector. Empty template fields fall back to the
// defaults so a partial config still yields a message on every branch.
func NewSelector(templates Templates) *Selector {
	defaults := DefaultTemplates()
	if templates.ScamWarning == "" {
		templates.ScamWarning = defaults.ScamWarning
	}
	if templates.ToxicityWarning == "" {
		templates.ToxicityWarning = defaults.ToxicityWarning
	}
	if templates.RiskyBehavior == "" {
		templates.RiskyBehavior = defaults.RiskyBehavior
	}
	if templates.DisrespectfulTone == "" {
		templates.DisrespectfulTone = defaults.DisrespectfulTone
	}
	if templates.Affirming == "" {
		templates.Affirming = defaults.Affirming
	}
	return &Selector{templates: templates}
}

// Select applies the priority rules and returns the chosen branch and the
// rendered message. Idempotent: the same Result always yields the same
// choice.
func (s *Selector) Select(r *Result) (TemplateKind, string) {
	switch {
	case r.Scam.AboveThreshold:
		return TemplateScamWarning, renderScore(s.templates.ScamWarning, r.Scam.Score)
	case r.Toxicity.AboveThreshold:
		return TemplateToxicityWarning, renderScore(s.templates.ToxicityWarning, r.Toxicity.Score)
	case r.Safety.Label == LabelRisky:
		return TemplateRiskyBehavior, renderConfidence(s.templates.RiskyBehavior, r.Safety.Confidence)
	case r.Tone.Label == LabelDisrespectful:
		return TemplateDisrespectful, renderConfidence(s.templates.DisrespectfulTone, r.Tone.Confidence)
	default:
		return TemplateAffirming, renderConfidence(s.templates.Affirming, r.Safety.Confidence)
	}
}

func renderScore(template string, score float64) string {
	return strings.ReplaceAll(template, "{score}", fmt.Sprintf("%.2f", score))
}

func renderConfidence(template string, confidence float64) string {
	return strings.ReplaceAll(template, "{confidence}", fmt.Sprintf("%.2f", confidence))
}
