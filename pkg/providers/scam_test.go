package providers

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestHeuristicScamScoring(t *testing.T) {
	// Nonsense keywords keep VADER sentiment out of the arithmetic so the
	// expected scores are exact.
	rules := []ScamRule{
		{Name: "heavy", Weight: 4.0, Keywords: []string{"zork", "blat"}},
		{Name: "light", Weight: 2.0, Keywords: []string{"quux"}},
	}
	scorer := NewHeuristicScam(rules, 8.0)

	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "no matches", text: "vwip gnar", want: 0.0},
		{name: "one rule", text: "zork ahead", want: 0.5},
		{name: "both rules sum", text: "zork blat quux", want: 0.75},
		{name: "rule counts once per message", text: "zork zork blat zork", want: 0.5},
		{name: "case insensitive", text: "ZORK", want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scorer.Score(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHeuristicScamDefaults(t *testing.T) {
	scorer := NewHeuristicScam(nil, 0)

	// Heavy stacking of markers must saturate at 1.0 regardless of the
	// politeness discount.
	got, err := scorer.Score(context.Background(), "Send me your password to claim your prize, act now")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1.0 {
		t.Errorf("stacked markers score = %v, want 1.0", got)
	}

	// Credential request plus unrealistic offer, same outcome.
	got, err = scorer.Score(context.Background(), "Send me your password and I'll give you free V-bucks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1.0 {
		t.Errorf("credential plus offer score = %v, want 1.0", got)
	}

	got, err = scorer.Score(context.Background(), "I only accept requests from people I actually know.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.0 {
		t.Errorf("benign text score = %v, want 0.0", got)
	}
}

func TestHeuristicScamPolitenessDiscount(t *testing.T) {
	scorer := NewHeuristicScam(nil, DefaultScamSaturation)

	plain, err := scorer.Score(context.Background(), "this is urgent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	polite, err := scorer.Score(context.Background(), "this is urgent, thank you so much, you are great")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if polite >= plain {
		t.Errorf("positive sentiment must discount the score: polite %v >= plain %v", polite, plain)
	}
}

func TestHeuristicScamCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewHeuristicScam(nil, 0).Score(ctx, "zork"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestLoadScamRules(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		rules, saturation, err := LoadScamRules(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rules) != len(DefaultScamRules()) {
			t.Errorf("got %d rules, want the defaults", len(rules))
		}
		if saturation != DefaultScamSaturation {
			t.Errorf("saturation = %v, want %v", saturation, DefaultScamSaturation)
		}
	})

	t.Run("custom file parsed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		content := "saturation_weight: 5.0\nrules:\n  - name: test\n    weight: 3.0\n    keywords: [\"foo\", \"bar\"]\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		rules, saturation, err := LoadScamRules(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rules) != 1 || rules[0].Name != "test" || rules[0].Weight != 3.0 {
			t.Errorf("rules = %+v", rules)
		}
		if saturation != 5.0 {
			t.Errorf("saturation = %v, want 5.0", saturation)
		}
	})

	t.Run("missing saturation falls back", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		content := "rules:\n  - name: test\n    weight: 1.0\n    keywords: [\"foo\"]\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		_, saturation, err := LoadScamRules(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saturation != DefaultScamSaturation {
			t.Errorf("saturation = %v, want default", saturation)
		}
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		if err := os.WriteFile(path, []byte("rules: [unclosed"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := LoadScamRules(path); err == nil {
			t.Error("expected a parse error")
		}
	})
}

// stubClassifier returns a fixed classification.
type stubClassifier struct {
	raw RawClassification
	err error
}

func (s *stubClassifier) ClassifyLabels(ctx context.Context, text string, candidates []string) (RawClassification, error) {
	return s.raw, s.err
}

func TestZeroShotScam(t *testing.T) {
	tests := []struct {
		name string
		raw  RawClassification
		want float64
	}{
		{
			name: "scam label wins",
			raw:  RawClassification{Label: "likely a scam", Confidence: 0.9},
			want: 0.9,
		},
		{
			name: "legitimate label wins, score is the complement",
			raw:  RawClassification{Label: "legitimate", Confidence: 0.8},
			want: 0.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := NewZeroShotScam(&stubClassifier{raw: tt.raw}, nil)
			got, err := scorer.Score(context.Background(), "some message")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("classifier error propagates", func(t *testing.T) {
		scorer := NewZeroShotScam(&stubClassifier{err: ErrUnavailable}, nil)
		if _, err := scorer.Score(context.Background(), "x"); !errors.Is(err, ErrUnavailable) {
			t.Errorf("error = %v, want ErrUnavailable", err)
		}
	})
}

// fixedScorer returns a fixed score.
type fixedScorer struct {
	score float64
	err   error
}

func (f *fixedScorer) Score(ctx context.Context, text string) (float64, error) {
	return f.score, f.err
}

func TestHybridScam(t *testing.T) {
	t.Run("takes the higher branch", func(t *testing.T) {
		scorer := NewHybridScam(&fixedScorer{score: 0.3}, &fixedScorer{score: 0.8})
		got, err := scorer.Score(context.Background(), "x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 0.8 {
			t.Errorf("score = %v, want 0.8", got)
		}
	})

	t.Run("nil branch is skipped", func(t *testing.T) {
		scorer := NewHybridScam(&fixedScorer{score: 0.4}, nil)
		got, err := scorer.Score(context.Background(), "x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 0.4 {
			t.Errorf("score = %v, want 0.4", got)
		}
	})

	t.Run("no branches is unavailable", func(t *testing.T) {
		if _, err := NewHybridScam(nil, nil).Score(context.Background(), "x"); !errors.Is(err, ErrUnavailable) {
			t.Errorf("error = %v, want ErrUnavailable", err)
		}
	})

	t.Run("branch error propagates", func(t *testing.T) {
		scorer := NewHybridScam(&fixedScorer{err: ErrUnavailable}, &fixedScorer{score: 0.9})
		if _, err := scorer.Score(context.Background(), "x"); !errors.Is(err, ErrUnavailable) {
			t.Errorf("error = %v, want ErrUnavailable", err)
		}
	})
}

func TestClamp01(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-0.5, 0}, {0, 0}, {0.5, 0.5}, {1, 1}, {1.5, 1},
	}
	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
