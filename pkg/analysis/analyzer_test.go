package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/edushield-ai/edushield/pkg/providers"
)

// fakeClassifier answers label requests from a candidate-keyed map and
// counts invocations.
type fakeClassifier struct {
	answers map[string]providers.RawClassification
	err     error
	calls   int
}

func (f *fakeClassifier) ClassifyLabels(ctx context.Context, text string, candidates []string) (providers.RawClassification, error) {
	f.calls++
	if f.err != nil {
		return providers.RawClassification{}, f.err
	}
	if raw, ok := f.answers[strings.Join(candidates, ",")]; ok {
		return raw, nil
	}
	return providers.RawClassification{Label: candidates[0], Confidence: 0.9}, nil
}

type fakeScorer struct {
	score float64
	err   error
	calls int
}

func (f *fakeScorer) Score(ctx context.Context, text string) (float64, error) {
	f.calls++
	return f.score, f.err
}

func safetyKey() string { return strings.Join(DefaultLabelConfig().Safety.Candidates, ",") }
func toneKey() string   { return strings.Join(DefaultLabelConfig().Tone.Candidates, ",") }

func TestAnalyzeScenarios(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		safetyLabel  string
		toneLabel    string
		toxicity     float64
		scam         float64
		wantTemplate TemplateKind
		wantSafety   Label
		wantTone     Label
	}{
		{
			name:         "toxic insult triggers toxicity warning",
			text:         "You are stupid and ugly",
			safetyLabel:  "safe behavior",
			toneLabel:    "disrespectful",
			toxicity:     0.82,
			scam:         0.05,
			wantTemplate: TemplateToxicityWarning,
			wantSafety:   LabelSafe,
			wantTone:     LabelDisrespectful,
		},
		{
			name:         "scam outranks mild toxicity",
			text:         "Send me your password and I'll give you free V-bucks",
			safetyLabel:  "risky behavior",
			toneLabel:    "respectful",
			toxicity:     0.1,
			scam:         0.9,
			wantTemplate: TemplateScamWarning,
			wantSafety:   LabelRisky,
			wantTone:     LabelRespectful,
		},
		{
			name:         "all clear affirms",
			text:         "Let's study together after school!",
			safetyLabel:  "safe behavior",
			toneLabel:    "respectful",
			toxicity:     0.02,
			scam:         0.01,
			wantTemplate: TemplateAffirming,
			wantSafety:   LabelSafe,
			wantTone:     LabelRespectful,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := &fakeClassifier{answers: map[string]providers.RawClassification{
				safetyKey(): {Label: tt.safetyLabel, Confidence: 0.88},
				toneKey():   {Label: tt.toneLabel, Confidence: 0.75},
			}}
			analyzer := NewAnalyzer(DefaultOptions(), classifier,
				&fakeScorer{score: tt.toxicity}, &fakeScorer{score: tt.scam})

			fb, err := analyzer.Analyze(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if fb.Template != tt.wantTemplate {
				t.Errorf("template = %q, want %q", fb.Template, tt.wantTemplate)
			}
			if fb.Result.Safety.Label != tt.wantSafety {
				t.Errorf("safety = %q, want %q", fb.Result.Safety.Label, tt.wantSafety)
			}
			if fb.Result.Tone.Label != tt.wantTone {
				t.Errorf("tone = %q, want %q", fb.Result.Tone.Label, tt.wantTone)
			}
			if fb.Result.Toxicity.Score != tt.toxicity {
				t.Errorf("toxicity = %v, want %v", fb.Result.Toxicity.Score, tt.toxicity)
			}
			if fb.Result.Scam.Score != tt.scam {
				t.Errorf("scam = %v, want %v", fb.Result.Scam.Score, tt.scam)
			}
			if fb.Result.ID == uuid.Nil {
				t.Error("result ID not set")
			}
			if fb.Result.AnalyzedAt.IsZero() {
				t.Error("analyzed_at not set")
			}
		})
	}
}

func TestAnalyzeInvalidInputSkipsProviders(t *testing.T) {
	classifier := &fakeClassifier{}
	toxicity := &fakeScorer{}
	scam := &fakeScorer{}
	analyzer := NewAnalyzer(DefaultOptions(), classifier, toxicity, scam)

	for _, input := range []string{"", "   \n\t "} {
		if _, err := analyzer.Analyze(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("input %q: error = %v, want ErrInvalidInput", input, err)
		}
	}
	if classifier.calls != 0 || toxicity.calls != 0 || scam.calls != 0 {
		t.Errorf("providers invoked on invalid input: classifier=%d toxicity=%d scam=%d",
			classifier.calls, toxicity.calls, scam.calls)
	}
}

func TestAnalyzeProviderFailure(t *testing.T) {
	tests := []struct {
		name       string
		classifier *fakeClassifier
		toxicity   *fakeScorer
		scam       *fakeScorer
	}{
		{
			name:       "classifier failure",
			classifier: &fakeClassifier{err: providers.ErrUnavailable},
			toxicity:   &fakeScorer{score: 0.1},
			scam:       &fakeScorer{score: 0.1},
		},
		{
			name:       "toxicity failure",
			classifier: &fakeClassifier{},
			toxicity:   &fakeScorer{err: providers.ErrUnavailable},
			scam:       &fakeScorer{score: 0.1},
		},
		{
			name:       "scam failure",
			classifier: &fakeClassifier{},
			toxicity:   &fakeScorer{score: 0.1},
			scam:       &fakeScorer{err: providers.ErrUnavailable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := NewAnalyzer(DefaultOptions(), tt.classifier, tt.toxicity, tt.scam)
			fb, err := analyzer.Analyze(context.Background(), "some message")
			if fb != nil {
				t.Error("no partial result may be returned on failure")
			}
			if !errors.Is(err, ErrAnalysisFailed) {
				t.Errorf("error = %v, want ErrAnalysisFailed", err)
			}
			if !errors.Is(err, providers.ErrUnavailable) {
				t.Errorf("error = %v, want wrapped ErrUnavailable", err)
			}
		})
	}
}

func TestAnalyzeSanitizesBeforeClassification(t *testing.T) {
	classifier := &fakeClassifier{}
	analyzer := NewAnalyzer(DefaultOptions(), classifier, &fakeScorer{}, &fakeScorer{})

	fb, err := analyzer.Analyze(context.Background(), "  hello there  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.Result.Text != "hello there" {
		t.Errorf("result text = %q, want normalized form", fb.Result.Text)
	}
}

func TestAnalyzeDeterministicJudgments(t *testing.T) {
	classifier := &fakeClassifier{answers: map[string]providers.RawClassification{
		safetyKey(): {Label: "risky behavior", Confidence: 0.71},
		toneKey():   {Label: "respectful", Confidence: 0.64},
	}}
	analyzer := NewAnalyzer(DefaultOptions(), classifier, &fakeScorer{score: 0.3}, &fakeScorer{score: 0.2})

	first, err := analyzer.Analyze(context.Background(), "same message")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := analyzer.Analyze(context.Background(), "same message")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Everything but the per-call ID and timestamp must match.
	if first.Result.Safety != second.Result.Safety || first.Result.Tone != second.Result.Tone {
		t.Errorf("category judgments differ: %+v vs %+v", first.Result, second.Result)
	}
	if first.Result.Toxicity != second.Result.Toxicity || first.Result.Scam != second.Result.Scam {
		t.Errorf("score judgments differ: %+v vs %+v", first.Result, second.Result)
	}
	if first.Template != second.Template || first.Message != second.Message {
		t.Errorf("feedback differs: (%q, %q) vs (%q, %q)", first.Template, first.Message, second.Template, second.Message)
	}
	if first.Result.ID == second.Result.ID {
		t.Error("each analysis must get a fresh ID")
	}
}

func TestAnalyzeCustomThreshold(t *testing.T) {
	opts := DefaultOptions()
	opts.Thresholds = Thresholds{Toxicity: 0.9, Scam: 0.9}
	analyzer := NewAnalyzer(opts, &fakeClassifier{}, &fakeScorer{score: 0.82}, &fakeScorer{score: 0.1})

	fb, err := analyzer.Analyze(context.Background(), "some message")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.Result.Toxicity.AboveThreshold {
		t.Error("0.82 must not flag with a 0.9 threshold")
	}
	if fb.Template != TemplateAffirming {
		t.Errorf("template = %q, want affirming", fb.Template)
	}
}
