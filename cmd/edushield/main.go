// Command edushield serves the message analysis API: free text in, a
// multi-axis behavioral assessment and a feedback message out. The analysis
// pipeline itself lives in pkg/analysis; this binary is the presentation
// collaborator that wires config, providers, log sinks, and HTTP together.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/lmittmann/tint"
	"github.com/subosito/gotenv"

	"github.com/edushield-ai/edushield/pkg/analysis"
	"github.com/edushield-ai/edushield/pkg/config"
	"github.com/edushield-ai/edushield/pkg/logsink"
	"github.com/edushield-ai/edushield/pkg/providers"
)

// presets are demo messages exposed to the UI, one per feedback branch.
var presets = map[string]string{
	"safe":       "I only accept requests from people I actually know.",
	"respectful": "Let's not share that photo, it could hurt their feelings.",
	"borderline": "Relax, it's just a joke. Everyone shares stuff.",
	"toxic":      "You're such a loser.",
	"scam":       "Want to earn $2500 for 1 hour of work",
}

func main() {
	configPath := flag.String("config", "configs/edushield.yaml", "path to YAML config")
	flag.Parse()

	if err := gotenv.Load(); err != nil {
		slog.Debug("no .env file found, using OS environment")
	}
	initLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer, cleanup := buildAnalyzer(ctx, cfg)
	defer cleanup()

	sink := buildSinks(ctx, cfg)
	defer func() { _ = sink.Close() }()

	app := fiber.New(fiber.Config{AppName: "edushield"})

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/v1/presets", func(c fiber.Ctx) error {
		return c.JSON(presets)
	})

	app.Post("/v1/analyze", func(c fiber.Ctx) error {
		var req struct {
			Text string `json:"text"`
		}
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		fb, err := analyzer.Analyze(c.Context(), req.Text)
		if err != nil {
			switch {
			case errors.Is(err, analysis.ErrInvalidInput):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			default:
				slog.Error("analysis failed", "error", err)
				return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "analysis failed, try again"})
			}
		}

		if sink.Len() > 0 {
			if err := sink.Append(c.Context(), logsink.NewRecord(fb)); err != nil {
				slog.Warn("failed to log analysis", "error", err)
			}
		}

		return c.JSON(fb)
	})

	go func() {
		slog.Info("listening", "addr", cfg.ListenAddr)
		if err := app.Listen(cfg.ListenAddr); err != nil {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func initLogger() {
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	})
	slog.SetDefault(slog.New(handler))
}

// buildAnalyzer wires the three providers per config and returns the facade
// plus a cleanup func for the model sessions.
func buildAnalyzer(ctx context.Context, cfg *config.Config) (*analysis.Analyzer, func()) {
	zeroShot := providers.NewZeroShot(providers.ZeroShotConfig{
		ModelPath:       cfg.Models.ZeroShotPath,
		ModelRepo:       cfg.Models.ZeroShotRepo,
		OnnxLibraryPath: cfg.Models.OnnxLibraryPath,
		AutoDownload:    cfg.Models.AutoDownload,
	})

	var toxicity providers.Scorer
	var closeToxicity func() error
	if cfg.ToxicityBackend == "openai" {
		toxicity = providers.NewRemoteToxicity(providers.RemoteToxicityConfig{
			APIKey: cfg.OpenAI.APIKey,
			Model:  cfg.OpenAI.Model,
		})
	} else {
		local := providers.NewToxicity(providers.ToxicityConfig{
			ModelPath:       cfg.Models.ToxicityPath,
			ModelRepo:       cfg.Models.ToxicityRepo,
			OnnxLibraryPath: cfg.Models.OnnxLibraryPath,
			AutoDownload:    cfg.Models.AutoDownload,
		})
		toxicity = local
		closeToxicity = local.Close
	}

	scam, closeScam := buildScamScorer(ctx, cfg, zeroShot)

	analyzer := analysis.NewAnalyzer(cfg.AnalyzerOptions(), zeroShot, toxicity, scam)
	cleanup := func() {
		if closeScam != nil {
			_ = closeScam()
		}
		if closeToxicity != nil {
			_ = closeToxicity()
		}
		_ = zeroShot.Close()
	}
	return analyzer, cleanup
}

// buildScamScorer selects the scam method: the zero-shot model, the rule
// scorer, or the hybrid of rules and seed similarity.
func buildScamScorer(ctx context.Context, cfg *config.Config, zeroShot *providers.ZeroShot) (providers.Scorer, func() error) {
	if cfg.Scam.Method == "model" {
		return providers.NewZeroShotScam(zeroShot, cfg.Scam.CandidateLabels), nil
	}

	rules, saturation, err := providers.LoadScamRules(cfg.Scam.RulesPath)
	if err != nil {
		slog.Warn("failed to load scam rules, using defaults", "error", err)
		rules, saturation = providers.DefaultScamRules(), providers.DefaultScamSaturation
	}
	heuristic := providers.NewHeuristicScam(rules, saturation)

	if cfg.Scam.Method == "rules" {
		return heuristic, nil
	}

	// Hybrid: add seed similarity when an embedding model is obtainable.
	seeds, err := providers.LoadScamSeeds(cfg.Scam.SeedsPath)
	if err != nil {
		slog.Warn("failed to load scam seeds, rules only", "error", err)
		return heuristic, nil
	}
	embedder := providers.NewEmbedder(providers.EmbedderConfig{
		ModelPath:       cfg.Models.EmbeddingPath,
		OnnxLibraryPath: cfg.Models.OnnxLibraryPath,
		AutoDownload:    cfg.Models.AutoDownload,
	})
	semantic, err := providers.NewSemanticScam(ctx, seeds, embedder.EmbeddingFunc())
	if err != nil {
		slog.Warn("semantic scam scorer unavailable, rules only", "error", err)
		_ = embedder.Close()
		return heuristic, nil
	}
	slog.Info("semantic scam scorer ready", "seeds", semantic.SeedCount())
	return providers.NewHybridScam(heuristic, semantic), embedder.Close
}

// buildSinks enables the optional logging collaborators named in config.
func buildSinks(ctx context.Context, cfg *config.Config) *logsink.Multi {
	var sinks []logsink.Sink

	if cfg.Sinks.CSVPath != "" {
		s, err := logsink.NewCSVSink(cfg.Sinks.CSVPath)
		if err != nil {
			slog.Warn("CSV sink disabled", "error", err)
		} else {
			sinks = append(sinks, s)
			slog.Info("CSV sink enabled", "path", cfg.Sinks.CSVPath)
		}
	}

	if cfg.Sinks.RedisAddr != "" {
		s, err := logsink.NewRedisSink(ctx, cfg.Sinks.RedisAddr, cfg.Sinks.RedisStream)
		if err != nil {
			slog.Warn("Redis sink disabled", "error", err)
		} else {
			sinks = append(sinks, s)
			slog.Info("Redis sink enabled", "addr", cfg.Sinks.RedisAddr)
		}
	}

	if cfg.Sinks.PostgresDSN != "" {
		s, err := logsink.NewPostgresSink(ctx, cfg.Sinks.PostgresDSN)
		if err != nil {
			slog.Warn("Postgres sink disabled", "error", err)
		} else {
			sinks = append(sinks, s)
			slog.Info("Postgres sink enabled")
		}
	}

	return logsink.NewMulti(sinks...)
}
