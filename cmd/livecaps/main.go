// Command livecaps is the live-caption correction server. It ingests
// reference documents into per-session term corpora and corrects
// low-confidence transcript words against them over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/islamborghini/livecaps/internal/config"
	"github.com/islamborghini/livecaps/internal/correction"
	"github.com/islamborghini/livecaps/internal/correction/llmcorrect"
	"github.com/islamborghini/livecaps/internal/health"
	"github.com/islamborghini/livecaps/internal/observe"
	"github.com/islamborghini/livecaps/internal/resilience"
	"github.com/islamborghini/livecaps/internal/server"
	"github.com/islamborghini/livecaps/internal/terms"
	"github.com/islamborghini/livecaps/pkg/corpus"
	corpuspg "github.com/islamborghini/livecaps/pkg/corpus/postgres"
	"github.com/islamborghini/livecaps/pkg/provider/doctext"
	"github.com/islamborghini/livecaps/pkg/provider/embeddings"
	ollamaembed "github.com/islamborghini/livecaps/pkg/provider/embeddings/ollama"
	oaembed "github.com/islamborghini/livecaps/pkg/provider/embeddings/openai"
	"github.com/islamborghini/livecaps/pkg/provider/llm"
	"github.com/islamborghini/livecaps/pkg/provider/llm/anyllm"
	oaillm "github.com/islamborghini/livecaps/pkg/provider/llm/openai"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "livecaps: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "livecaps: %v\n", err)
		}
		return 1
	}

	// The level var lets the config watcher retune verbosity at runtime.
	logLevel := new(slog.LevelVar)
	logLevel.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("livecaps starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "livecaps",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Providers ─────────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	llmProvider, embedProvider, docTextProvider, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	// ── Corpus store ──────────────────────────────────────────────────────────
	var (
		store    corpus.Store
		searcher corpus.SemanticSearcher
	)
	if dsn := cfg.Corpus.PostgresDSN; dsn != "" {
		if embedProvider == nil {
			slog.Error("corpus.postgres_dsn is set but no embeddings provider is configured")
			return 1
		}
		pgStore, err := corpuspg.NewStore(ctx, dsn, embedProvider)
		if err != nil {
			slog.Error("failed to connect corpus store", "err", err)
			return 1
		}
		defer pgStore.Close()
		store = pgStore
		searcher = pgStore
		slog.Info("corpus store ready", "backend", "postgres")
	} else {
		store = corpus.NewMemStore()
		slog.Info("corpus store ready", "backend", "memory",
			"note", "terms are lost on restart")
	}

	// ── Orchestrator ──────────────────────────────────────────────────────────
	orchestrator := correction.New(store, orchestratorOptions(cfg, searcher, llmProvider)...)

	// ── HTTP server ───────────────────────────────────────────────────────────
	srvOpts := []server.Option{
		server.WithLogger(logger),
		server.WithMetrics(observe.DefaultMetrics()),
		server.WithExtractor(extractorFor(cfg)),
		server.WithHealthCheckers(health.Checker{
			Name: "corpus",
			Check: func(ctx context.Context) error {
				_, err := store.Terms(ctx, "healthcheck")
				return err
			},
		}),
	}
	if cfg.Server.ListenAddr != "" {
		srvOpts = append(srvOpts, server.WithAddr(cfg.Server.ListenAddr))
	}
	if docTextProvider != nil {
		srvOpts = append(srvOpts, server.WithDocText(docTextProvider))
	}
	if tls := cfg.Server.TLS; tls != nil {
		srvOpts = append(srvOpts, server.WithTLS(tls.CertFile, tls.KeyFile))
	}

	srv := server.New(orchestrator, store, srvOpts...)

	// ── Config hot-reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if d.LogLevelChanged {
			logLevel.Set(slogLevel(d.NewLogLevel))
			slog.Info("log level updated", "level", d.NewLogLevel)
		}
		if d.CorrectionChanged || d.ExtractionChanged {
			slog.Warn("correction/extraction tuning changed on disk — restart to apply")
		}
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	slog.Info("server ready — press Ctrl+C to shut down")

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
// The "openai" LLM uses the native OpenAI client; the remaining backends go
// through the any-llm multiplexer.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []oaillm.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaillm.WithBaseURL(entry.BaseURL))
		}
		return oaillm.New(entry.APIKey, entry.Model, opts...)
	})

	for _, providerName := range []string{
		"anthropic", "ollama", "gemini",
		"deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	reg.RegisterEmbeddings("openai", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		return oaembed.New(entry.APIKey, entry.Model, opts...)
	})

	reg.RegisterEmbeddings("ollama", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		return ollamaembed.New(entry.BaseURL, entry.Model)
	})

	reg.RegisterDocText("plain", func(config.ProviderEntry) (doctext.Provider, error) {
		return doctext.NewPlain(), nil
	})
}

// buildProviders instantiates the providers named in cfg. LLM and embeddings
// providers are wrapped in circuit-breaking fallback groups so a flapping
// backend degrades gracefully instead of stalling every request.
func buildProviders(cfg *config.Config, reg *config.Registry) (llm.Provider, embeddings.Provider, doctext.Provider, error) {
	var (
		llmProvider     llm.Provider
		embedProvider   embeddings.Provider
		docTextProvider doctext.Provider
	)

	if name := cfg.Providers.LLM.Name; name != "" {
		p, err := reg.CreateLLM(cfg.Providers.LLM)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create llm provider %q: %w", name, err)
		}
		llmProvider = resilience.NewLLMFallback(p, name, resilience.FallbackConfig{})
		slog.Info("provider created", "kind", "llm", "name", name, "model", p.ModelID())
	}

	if name := cfg.Providers.Embeddings.Name; name != "" {
		p, err := reg.CreateEmbeddings(cfg.Providers.Embeddings)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create embeddings provider %q: %w", name, err)
		}
		embedProvider = resilience.NewEmbeddingsFallback(p, name, resilience.FallbackConfig{})
		slog.Info("provider created", "kind", "embeddings", "name", name, "model", p.ModelID())
	}

	if name := cfg.Providers.DocText.Name; name != "" {
		p, err := reg.CreateDocText(cfg.Providers.DocText)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create doctext provider %q: %w", name, err)
		}
		docTextProvider = p
		slog.Info("provider created", "kind", "doctext", "name", name)
	}

	return llmProvider, embedProvider, docTextProvider, nil
}

// orchestratorOptions translates config tuning into correction options.
// Zero-valued settings are omitted so the pipeline defaults apply.
func orchestratorOptions(cfg *config.Config, searcher corpus.SemanticSearcher, llmProvider llm.Provider) []correction.Option {
	opts := []correction.Option{
		correction.WithMetrics(observe.DefaultMetrics()),
	}

	c := cfg.Correction
	if c.Mode != "" {
		opts = append(opts, correction.WithMode(c.Mode))
	}
	if c.ConfidenceThreshold > 0 {
		opts = append(opts, correction.WithConfidenceThreshold(c.ConfidenceThreshold))
	}
	if c.RuleThreshold > 0 {
		opts = append(opts, correction.WithRuleThreshold(c.RuleThreshold))
	}
	if c.SemanticWeight > 0 || c.PhoneticWeight > 0 {
		opts = append(opts, correction.WithHybridWeights(c.SemanticWeight, c.PhoneticWeight))
	}
	if d := c.LLMTimeoutDuration(); d > 0 {
		opts = append(opts, correction.WithLLMTimeout(d))
	}

	if searcher != nil {
		opts = append(opts, correction.WithSemanticSearcher(searcher))
	}
	if llmProvider != nil {
		opts = append(opts, correction.WithGenerative(llmcorrect.New(llmProvider)))
	}
	return opts
}

// extractorFor builds the term extractor with config overrides.
func extractorFor(cfg *config.Config) *terms.Extractor {
	var opts []terms.Option
	e := cfg.Extraction
	if e.MinFrequency > 0 {
		opts = append(opts, terms.WithMinFrequency(e.MinFrequency))
	}
	if e.MaxContextSentences > 0 {
		opts = append(opts, terms.WithMaxContextSentences(e.MaxContextSentences))
	}
	if e.MaxPhrases > 0 {
		opts = append(opts, terms.WithMaxPhrases(e.MaxPhrases))
	}
	return terms.New(opts...)
}

// slogLevel maps the config log level to slog.
func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
