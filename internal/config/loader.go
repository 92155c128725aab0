package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/islamborghini/livecaps/internal/correction"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":        {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"embeddings": {"openai", "ollama"},
	"doctext":    {"plain"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if tls := cfg.Server.TLS; tls != nil {
		if tls.CertFile == "" || tls.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("embeddings", cfg.Providers.Embeddings.Name)
	validateProviderName("doctext", cfg.Providers.DocText.Name)

	// Correction pipeline
	if m := cfg.Correction.Mode; m != "" && !m.IsValid() {
		errs = append(errs, fmt.Errorf("correction.mode %q is invalid; valid values: phonetic, semantic, hybrid", m))
	}
	if t := cfg.Correction.ConfidenceThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("correction.confidence_threshold %.2f is out of range [0, 1]", t))
	}
	if t := cfg.Correction.RuleThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("correction.rule_threshold %.2f is out of range [0, 1]", t))
	}
	if w := cfg.Correction.SemanticWeight; w < 0 {
		errs = append(errs, fmt.Errorf("correction.semantic_weight %.2f must not be negative", w))
	}
	if w := cfg.Correction.PhoneticWeight; w < 0 {
		errs = append(errs, fmt.Errorf("correction.phonetic_weight %.2f must not be negative", w))
	}
	if cfg.Correction.LLMTimeout != "" {
		if d, err := time.ParseDuration(cfg.Correction.LLMTimeout); err != nil {
			errs = append(errs, fmt.Errorf("correction.llm_timeout %q is not a duration: %w", cfg.Correction.LLMTimeout, err))
		} else if d <= 0 {
			errs = append(errs, fmt.Errorf("correction.llm_timeout %q must be positive", cfg.Correction.LLMTimeout))
		}
	}

	// Extraction
	if f := cfg.Extraction.MinFrequency; f < 0 {
		errs = append(errs, fmt.Errorf("extraction.min_frequency %d must not be negative", f))
	}
	if n := cfg.Extraction.MaxPhrases; n < 0 {
		errs = append(errs, fmt.Errorf("extraction.max_phrases %d must not be negative", n))
	}

	// Semantic mode needs an embeddings provider and a vector store.
	if cfg.Correction.Mode == correction.ModeSemantic || cfg.Correction.Mode == correction.ModeHybrid {
		if cfg.Providers.Embeddings.Name == "" {
			slog.Warn("correction.mode requires embeddings but providers.embeddings is not configured; retrieval degrades to phonetic-only",
				"mode", cfg.Correction.Mode)
		}
		if cfg.Corpus.PostgresDSN == "" {
			slog.Warn("correction.mode requires a vector store but corpus.postgres_dsn is empty; retrieval degrades to phonetic-only",
				"mode", cfg.Correction.Mode)
		}
	}

	// Embeddings ↔ corpus dimensions
	if cfg.Providers.Embeddings.Name != "" && cfg.Corpus.EmbeddingDimensions <= 0 {
		slog.Warn("providers.embeddings is configured but corpus.embedding_dimensions is not set; defaulting to 1536")
	}

	// Generative correction availability
	if cfg.Providers.LLM.Name == "" {
		slog.Warn("providers.llm is not configured; corrections will be rule-based only")
	}

	return errors.Join(errs...)
}

// LLMTimeoutDuration returns the parsed generative-stage timeout, or zero
// when unset. [Validate] has already checked the string parses.
func (c CorrectionConfig) LLMTimeoutDuration() time.Duration {
	if c.LLMTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.LLMTimeout)
	if err != nil {
		return 0
	}
	return d
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
