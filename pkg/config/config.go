// Package config loads the service configuration: a YAML file with
// environment-variable overrides and sensible defaults for everything, so
// the binary runs without any config file on disk.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/edushield-ai/edushield/pkg/analysis"
)

// EnvPrefix is the prefix for all override variables.
const EnvPrefix = "EDUSHIELD_"

// Config is the full service configuration. Immutable after startup.
type Config struct {
	// ListenAddr is the HTTP listen address for the presentation server.
	ListenAddr string `yaml:"listen_addr"`

	// MaxInputLength caps submitted text, in runes. Oversized input is
	// rejected, never truncated.
	MaxInputLength int `yaml:"max_input_length"`

	Thresholds analysis.Thresholds  `yaml:"thresholds"`
	Labels     analysis.LabelConfig `yaml:"labels"`
	Templates  analysis.Templates   `yaml:"templates"`

	Models ModelsConfig `yaml:"models"`
	Scam   ScamConfig   `yaml:"scam"`

	// ToxicityBackend selects the toxicity scorer: "local" (ONNX) or
	// "openai" (moderation endpoint).
	ToxicityBackend string       `yaml:"toxicity_backend"`
	OpenAI          OpenAIConfig `yaml:"openai"`

	Sinks SinksConfig `yaml:"sinks"`
}

// ModelsConfig locates the local ONNX models.
type ModelsConfig struct {
	ZeroShotPath    string `yaml:"zero_shot_path"`
	ZeroShotRepo    string `yaml:"zero_shot_repo"`
	ToxicityPath    string `yaml:"toxicity_path"`
	ToxicityRepo    string `yaml:"toxicity_repo"`
	EmbeddingPath   string `yaml:"embedding_path"`
	OnnxLibraryPath string `yaml:"onnx_library_path"`
	AutoDownload    bool   `yaml:"auto_download"`
}

// ScamConfig selects and tunes the scam scorer.
type ScamConfig struct {
	// Method is "model" (zero-shot), "rules", or "hybrid" (default).
	Method string `yaml:"method"`
	// RulesPath and SeedsPath point at optional YAML files; missing files
	// fall back to built-in defaults.
	RulesPath string `yaml:"rules_path"`
	SeedsPath string `yaml:"seeds_path"`
	// CandidateLabels are the zero-shot labels for the "model" method,
	// scam label first.
	CandidateLabels []string `yaml:"candidate_labels"`
}

// OpenAIConfig configures the remote moderation backend.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// SinksConfig enables the optional logging collaborators. An empty value
// disables that sink.
type SinksConfig struct {
	CSVPath     string `yaml:"csv_path"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisStream string `yaml:"redis_stream"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// NewDefaultConfig returns a config with every recognized default.
func NewDefaultConfig() *Config {
	return &Config{
		ListenAddr:      ":8080",
		MaxInputLength:  analysis.DefaultMaxInputLength,
		Thresholds:      analysis.DefaultThresholds(),
		Labels:          analysis.DefaultLabelConfig(),
		Templates:       analysis.DefaultTemplates(),
		ToxicityBackend: "local",
		Models: ModelsConfig{
			ZeroShotPath:  "./models/bart-large-mnli",
			ToxicityPath:  "./models/toxic-bert",
			EmbeddingPath: "./models/all-MiniLM-L6-v2",
		},
		Scam: ScamConfig{
			Method:          "hybrid",
			CandidateLabels: []string{"likely a scam", "legitimate"},
		},
		Sinks: SinksConfig{
			RedisStream: "edushield:analyses",
		},
	}
}

// Load reads the YAML config at path and applies environment overrides.
// A missing file is not an error; defaults are used so the service runs
// without any configuration on disk.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// YAML can override candidate label strings but not the canonical
	// label enums they align with; restore the alignment here.
	defaults := analysis.DefaultLabelConfig()
	cfg.Labels.Safety.Labels = defaults.Safety.Labels
	cfg.Labels.Tone.Labels = defaults.Tone.Labels
	if len(cfg.Labels.Safety.Candidates) != len(defaults.Safety.Candidates) {
		cfg.Labels.Safety = defaults.Safety
	}
	if len(cfg.Labels.Tone.Candidates) != len(defaults.Tone.Candidates) {
		cfg.Labels.Tone = defaults.Tone
	}

	cfg.applyEnvOverrides()

	cfg.Thresholds.Toxicity = clampFloat(cfg.Thresholds.Toxicity, 0, 1)
	cfg.Thresholds.Scam = clampFloat(cfg.Thresholds.Scam, 0, 1)
	if cfg.MaxInputLength <= 0 {
		cfg.MaxInputLength = analysis.DefaultMaxInputLength
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.ListenAddr = GetEnvString(EnvPrefix+"LISTEN_ADDR", c.ListenAddr)
	c.MaxInputLength = GetEnvInt(EnvPrefix+"MAX_INPUT_LENGTH", c.MaxInputLength)
	c.Thresholds.Toxicity = GetEnvFloat(EnvPrefix+"TOXICITY_THRESHOLD", c.Thresholds.Toxicity)
	c.Thresholds.Scam = GetEnvFloat(EnvPrefix+"SCAM_THRESHOLD", c.Thresholds.Scam)
	c.Models.OnnxLibraryPath = GetEnvString(EnvPrefix+"ONNX_LIBRARY_PATH", c.Models.OnnxLibraryPath)
	c.Models.AutoDownload = GetEnvBool(EnvPrefix+"AUTO_DOWNLOAD_MODELS", c.Models.AutoDownload)
	c.ToxicityBackend = GetEnvString(EnvPrefix+"TOXICITY_BACKEND", c.ToxicityBackend)
	c.OpenAI.APIKey = GetEnvString("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.Scam.Method = GetEnvString(EnvPrefix+"SCAM_METHOD", c.Scam.Method)
	c.Sinks.CSVPath = GetEnvString(EnvPrefix+"CSV_LOG_PATH", c.Sinks.CSVPath)
	c.Sinks.RedisAddr = GetEnvString(EnvPrefix+"REDIS_ADDR", c.Sinks.RedisAddr)
	c.Sinks.PostgresDSN = GetEnvString(EnvPrefix+"POSTGRES_DSN", c.Sinks.PostgresDSN)
}

// AnalyzerOptions converts the file-level config into the core's options.
func (c *Config) AnalyzerOptions() analysis.Options {
	return analysis.Options{
		MaxInputLength: c.MaxInputLength,
		Thresholds:     c.Thresholds,
		Labels:         c.Labels,
		Templates:      c.Templates,
	}
}

// GetEnvString returns the env var value or the fallback when unset.
func GetEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt returns the env var parsed as int, or the fallback when unset
// or unparsable.
func GetEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvFloat returns the env var parsed as float64, or the fallback when
// unset or unparsable.
func GetEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// GetEnvBool returns the env var parsed as bool, or the fallback when unset
// or unparsable.
func GetEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
