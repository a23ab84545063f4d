package providers

// semantic.go - Semantic scam scoring against seed phrases
//
// Seed phrases (known scam openers, lures, pressure lines) are embedded
// once at construction into an in-memory chromem-go collection. Scoring a
// message is a nearest-neighbor query: the score is the best cosine
// similarity weighted by the matched seed's severity. Catches paraphrased
// scams the keyword rules miss.

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"gopkg.in/yaml.v3"
)

// ScamSeed is one group of example scam phrases sharing a category and severity.
type ScamSeed struct {
	Category string   `yaml:"category"`
	Severity float64  `yaml:"severity"`
	Examples []string `yaml:"examples"`
}

type scamSeedsFile struct {
	Seeds []ScamSeed `yaml:"seeds"`
}

// DefaultScamSeeds returns the built-in seed phrases used when no YAML file
// is loaded.
func DefaultScamSeeds() []ScamSeed {
	return []ScamSeed{
		{Category: "unrealistic_offer", Severity: 0.9, Examples: []string{
			"Want to earn $2500 for 1 hour of work",
			"Congratulations, you have been selected to receive a free prize",
			"I will send you free game currency if you help me out",
		}},
		{Category: "credential_phish", Severity: 1.0, Examples: []string{
			"Send me your password and I will upgrade your account",
			"Verify your account by replying with your login details",
			"We detected a problem, confirm your card number to keep your account",
		}},
		{Category: "advance_fee", Severity: 0.9, Examples: []string{
			"Pay a small processing fee to release your winnings",
			"Buy a gift card and send me the code so I can transfer the money",
		}},
		{Category: "pressure", Severity: 0.7, Examples: []string{
			"This offer expires in ten minutes, act now",
			"Do not tell your parents about this deal, it is our secret",
		}},
	}
}

// LoadScamSeeds loads seeds from a YAML file, falling back to the built-in
// defaults when the file does not exist.
func LoadScamSeeds(path string) ([]ScamSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultScamSeeds(), nil
		}
		return nil, fmt.Errorf("failed to read scam seeds file: %w", err)
	}

	var file scamSeedsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scam seeds: %w", err)
	}
	if len(file.Seeds) == 0 {
		return DefaultScamSeeds(), nil
	}
	return file.Seeds, nil
}

// SemanticScam scores scam likelihood by similarity to embedded seed phrases.
type SemanticScam struct {
	collection *chromem.Collection
	docCount   int
}

// NewSemanticScam embeds the given seeds into a fresh in-memory collection.
// Pass nil seeds to use the defaults. The embedding function is typically
// (*Embedder).EmbeddingFunc, but tests may inject their own.
func NewSemanticScam(ctx context.Context, seeds []ScamSeed, embed chromem.EmbeddingFunc) (*SemanticScam, error) {
	if seeds == nil {
		seeds = DefaultScamSeeds()
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection("scam-seeds", nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create seed collection: %w", err)
	}

	var docs []chromem.Document
	for _, seed := range seeds {
		for _, example := range seed.Examples {
			docs = append(docs, chromem.Document{
				ID:      uuid.NewString(),
				Content: example,
				Metadata: map[string]string{
					"category": seed.Category,
					"severity": strconv.FormatFloat(seed.Severity, 'f', -1, 64),
				},
			})
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no scam seed examples to embed")
	}

	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("%w: failed to embed scam seeds: %w", ErrUnavailable, err)
	}

	return &SemanticScam{collection: collection, docCount: len(docs)}, nil
}

// Score implements Scorer. The score is the best seed similarity scaled by
// that seed's severity, clamped to [0,1].
func (s *SemanticScam) Score(ctx context.Context, text string) (float64, error) {
	results, err := s.collection.Query(ctx, text, 1, nil, nil)
	if err != nil {
		if ctx.Err() != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: seed query: %w", ErrUnavailable, err)
	}
	if len(results) == 0 {
		return 0, nil
	}

	best := results[0]
	severity := 1.0
	if raw, ok := best.Metadata["severity"]; ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			severity = v
		}
	}
	return clamp01(float64(best.Similarity) * severity), nil
}

// SeedCount returns the number of embedded seed examples.
func (s *SemanticScam) SeedCount() int {
	return s.docCount
}
