package providers

// scam.go - Rule-based scam-likelihood scoring
//
// Scores text for fraud/solicitation markers: urgency, requests for money or
// credentials, unrealistic offers. Rules are weighted keyword groups loaded
// from YAML with hardcoded defaults, so the scorer works without any config
// file. Polite, positively-phrased text earns a small discount, measured
// with VADER sentiment rather than a second keyword list.
//
// This scorer is independent of the toxicity score by design; the two
// signals are never conflated.

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jonreiter/govader"
	"gopkg.in/yaml.v3"
)

// ScamRule is one weighted group of scam marker phrases.
type ScamRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Weight   float64  `yaml:"weight"`
}

// scamRulesFile is the on-disk shape of a scam rules YAML file.
type scamRulesFile struct {
	Rules []ScamRule `yaml:"rules"`
	// SaturationWeight is the rule-weight sum that maps to a score of 1.0.
	SaturationWeight float64 `yaml:"saturation_weight"`
}

// DefaultScamSaturation is the matched-weight sum that saturates the score at 1.0.
const DefaultScamSaturation = 8.0

// DefaultPolitenessDiscount scales how much positive sentiment reduces the score.
const DefaultPolitenessDiscount = 0.15

// DefaultScamRules returns the built-in rule set used when no YAML file is
// loaded.
func DefaultScamRules() []ScamRule {
	return []ScamRule{
		{Name: "credential_request", Weight: 6.0, Keywords: []string{
			"password", "login", "verification code", "security code",
			"account number", "social security", "credit card",
		}},
		{Name: "unrealistic_offer", Weight: 5.0, Keywords: []string{
			"free v-bucks", "free robux", "free gift card", "free iphone",
			"you won", "you've won", "congratulations you", "claim your prize",
			"earn $", "per hour of work", "get rich",
		}},
		{Name: "money_request", Weight: 4.0, Keywords: []string{
			"send me money", "wire transfer", "gift card code", "western union",
			"pay a small fee", "processing fee", "send me your",
		}},
		{Name: "crypto_lure", Weight: 4.0, Keywords: []string{
			"bitcoin", "crypto giveaway", "double your money", "guaranteed return",
			"investment opportunity",
		}},
		{Name: "urgency", Weight: 3.0, Keywords: []string{
			"act now", "urgent", "immediately", "expires today", "last chance",
			"limited time", "right away or",
		}},
		{Name: "secrecy", Weight: 3.0, Keywords: []string{
			"don't tell anyone", "keep this secret", "between us", "delete this message",
		}},
		{Name: "link_bait", Weight: 2.0, Keywords: []string{
			"click this link", "click here", "follow this link", "download this",
		}},
	}
}

// LoadScamRules loads scam rules from a YAML file. A missing file is not an
// error: the built-in defaults are returned so the scorer works without any
// configuration on disk.
func LoadScamRules(path string) ([]ScamRule, float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultScamRules(), DefaultScamSaturation, nil
		}
		return nil, 0, fmt.Errorf("failed to read scam rules file: %w", err)
	}

	var file scamRulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, 0, fmt.Errorf("failed to parse scam rules: %w", err)
	}
	if len(file.Rules) == 0 {
		file.Rules = DefaultScamRules()
	}
	if file.SaturationWeight <= 0 {
		file.SaturationWeight = DefaultScamSaturation
	}
	return file.Rules, file.SaturationWeight, nil
}

// HeuristicScam scores scam likelihood from weighted keyword rules.
type HeuristicScam struct {
	rules              []ScamRule
	saturation         float64
	politenessDiscount float64
	sentiment          *govader.SentimentIntensityAnalyzer
}

// NewHeuristicScam creates a rule-based scam scorer. Pass nil rules to use
// the defaults.
func NewHeuristicScam(rules []ScamRule, saturation float64) *HeuristicScam {
	if rules == nil {
		rules = DefaultScamRules()
	}
	if saturation <= 0 {
		saturation = DefaultScamSaturation
	}
	return &HeuristicScam{
		rules:              rules,
		saturation:         saturation,
		politenessDiscount: DefaultPolitenessDiscount,
		sentiment:          govader.NewSentimentIntensityAnalyzer(),
	}
}

// Score implements Scorer. Pure function of the rules and the text; no
// model resources, so it cannot fail with ErrUnavailable.
func (h *HeuristicScam) Score(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	lower := strings.ToLower(text)

	// Each rule contributes its weight at most once, no matter how many of
	// its keywords appear.
	var total float64
	for _, rule := range h.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				total += rule.Weight
				break
			}
		}
	}

	score := total / h.saturation
	score -= h.politenessScore(text) * h.politenessDiscount
	return clamp01(score), nil
}

// politenessScore returns the VADER positive-sentiment proportion in [0,1].
func (h *HeuristicScam) politenessScore(text string) float64 {
	return h.sentiment.PolarityScores(text).Positive
}

// ZeroShotScam adapts a label classifier into a scam Scorer using a
// two-label candidate set, scam label first. The score is the classifier's
// confidence when the scam label wins, and its complement otherwise, so the
// output is always the scam-side probability.
type ZeroShotScam struct {
	classifier LabelClassifier
	candidates []string
}

// NewZeroShotScam creates a model-based scam scorer. Pass nil candidates
// for the defaults {"likely a scam", "legitimate"}.
func NewZeroShotScam(classifier LabelClassifier, candidates []string) *ZeroShotScam {
	if len(candidates) < 2 {
		candidates = []string{"likely a scam", "legitimate"}
	}
	return &ZeroShotScam{classifier: classifier, candidates: candidates}
}

// Score implements Scorer.
func (s *ZeroShotScam) Score(ctx context.Context, text string) (float64, error) {
	raw, err := s.classifier.ClassifyLabels(ctx, text, s.candidates)
	if err != nil {
		return 0, err
	}
	if strings.EqualFold(raw.Label, s.candidates[0]) {
		return clamp01(raw.Confidence), nil
	}
	return clamp01(1 - raw.Confidence), nil
}

// HybridScam combines the rule-based and semantic scam scorers, taking the
// more concerning of the two signals. Either branch may be nil.
type HybridScam struct {
	heuristic Scorer
	semantic  Scorer
}

// NewHybridScam creates a hybrid scam scorer.
func NewHybridScam(heuristic, semantic Scorer) *HybridScam {
	return &HybridScam{heuristic: heuristic, semantic: semantic}
}

// Score implements Scorer.
func (s *HybridScam) Score(ctx context.Context, text string) (float64, error) {
	var best float64
	scored := false

	for _, scorer := range []Scorer{s.heuristic, s.semantic} {
		if scorer == nil {
			continue
		}
		v, err := scorer.Score(ctx, text)
		if err != nil {
			return 0, err
		}
		if v > best {
			best = v
		}
		scored = true
	}

	if !scored {
		return 0, fmt.Errorf("%w: hybrid scam scorer has no branches", ErrUnavailable)
	}
	return best, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
