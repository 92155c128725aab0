// Package correction implements the transcript correction pipeline: it takes
// a live transcript with per-word confidences, retrieves matching reference
// terms from the session corpus, and replaces likely mishearings.
//
// The pipeline never fails a request. Every stage degrades individually: a
// corpus read failure skips retrieval, a failed semantic query is dropped, a
// generative failure falls back to rule-based correction, and a panic
// anywhere yields the unmodified transcript. Degradations surface as warnings
// on the result, not as errors.
package correction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/islamborghini/livecaps/internal/observe"
	"github.com/islamborghini/livecaps/internal/phonetic"
	"github.com/islamborghini/livecaps/pkg/corpus"
	"github.com/islamborghini/livecaps/pkg/types"
)

const (
	defaultConfidenceThreshold = 0.7
	defaultSemanticWeight      = 0.5
	defaultPhoneticWeight      = 0.5
	defaultLLMTimeout          = 10 * time.Second
)

// GenerativeCorrector rewrites a transcript using a language model, guided by
// the retrieved candidate terms. Implementations live outside this package so
// the pipeline does not depend on any particular model client.
type GenerativeCorrector interface {
	// CorrectTranscript returns the corrected transcript and the individual
	// replacements it made. lowWords are the low-confidence surface forms.
	CorrectTranscript(ctx context.Context, transcript string, lowWords []string, candidates []types.CorrectionCandidate) (string, []types.CorrectionDetail, error)
}

// Option is a functional option for configuring an [Orchestrator].
type Option func(*Orchestrator)

// WithSemanticSearcher enables semantic retrieval through the given searcher.
// Without one the pipeline runs phonetic-only regardless of mode.
func WithSemanticSearcher(s corpus.SemanticSearcher) Option {
	return func(o *Orchestrator) {
		o.searcher = s
	}
}

// WithGenerative enables the generative correction stage. Without one the
// pipeline always corrects rule-based.
func WithGenerative(g GenerativeCorrector) Option {
	return func(o *Orchestrator) {
		o.generative = g
	}
}

// WithMetrics attaches metric instruments to the pipeline.
func WithMetrics(m *observe.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithLogger sets the logger. Default: [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// WithMatcher replaces the phonetic matcher used for retrieval and rule-based
// correction.
func WithMatcher(m *phonetic.Matcher) Option {
	return func(o *Orchestrator) {
		o.matcher = m
	}
}

// WithMode selects the retrieval mode. Default: [ModeHybrid].
func WithMode(mode Mode) Option {
	return func(o *Orchestrator) {
		o.mode = mode
	}
}

// WithConfidenceThreshold sets the default word-confidence threshold used
// when a request does not carry its own. Default: 0.7.
func WithConfidenceThreshold(t float64) Option {
	return func(o *Orchestrator) {
		o.confidenceThreshold = t
	}
}

// WithRuleThreshold sets the minimum match score for a rule-based
// replacement. Default: 0.7.
func WithRuleThreshold(t float64) Option {
	return func(o *Orchestrator) {
		o.ruleThreshold = t
	}
}

// WithHybridWeights sets the semantic and phonetic weights used to combine
// retrieval scores. Default: 0.5 each.
func WithHybridWeights(sem, phon float64) Option {
	return func(o *Orchestrator) {
		o.semanticWeight = sem
		o.phoneticWeight = phon
	}
}

// WithLLMTimeout bounds how long the generative stage may run before the
// pipeline falls back to rule-based correction. Default: 10s.
func WithLLMTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.llmTimeout = d
	}
}

// Orchestrator runs the correction pipeline. It is safe for concurrent use.
type Orchestrator struct {
	store      corpus.Store
	searcher   corpus.SemanticSearcher
	generative GenerativeCorrector
	matcher    *phonetic.Matcher
	metrics    *observe.Metrics
	stats      *Stats
	log        *slog.Logger

	mode                Mode
	confidenceThreshold float64
	ruleThreshold       float64
	semanticWeight      float64
	phoneticWeight      float64
	llmTimeout          time.Duration
}

// New returns an [Orchestrator] reading reference terms from store.
func New(store corpus.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:               store,
		matcher:             phonetic.New(),
		stats:               NewStats(),
		log:                 slog.Default(),
		mode:                ModeHybrid,
		confidenceThreshold: defaultConfidenceThreshold,
		ruleThreshold:       defaultRuleThreshold,
		semanticWeight:      defaultSemanticWeight,
		phoneticWeight:      defaultPhoneticWeight,
		llmTimeout:          defaultLLMTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Stats returns the orchestrator's counters.
func (o *Orchestrator) Stats() *Stats {
	return o.stats
}

// Correct runs the full pipeline on req and always returns a usable result.
// When anything goes wrong the transcript passes through unmodified and the
// result carries a warning describing what was skipped.
func (o *Orchestrator) Correct(ctx context.Context, req *types.CorrectionRequest) (res *types.CorrectionResult) {
	start := time.Now()
	res = &types.CorrectionResult{
		OriginalTranscript:  req.Transcript,
		CorrectedTranscript: req.Transcript,
		Corrections:         []types.CorrectionDetail{},
		SessionID:           req.SessionID,
	}

	failed := false
	candidateCount := 0
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("correction pipeline panicked", "session_id", req.SessionID, "panic", r)
			res.CorrectedTranscript = req.Transcript
			res.WasModified = false
			res.Corrections = []types.CorrectionDetail{}
			res.Warnings = append(res.Warnings, fmt.Sprintf("correction skipped: internal error: %v", r))
			failed = true
		}
		res.ProcessingTimeMs = time.Since(start).Milliseconds()
		o.stats.Record(time.Since(start), candidateCount, len(res.Corrections), failed)
		if o.metrics != nil {
			o.metrics.RecordCorrection(ctx, time.Since(start), candidateCount, len(res.Corrections), failed)
		}
	}()

	if strings.TrimSpace(req.Transcript) == "" {
		return res
	}

	threshold := req.ConfidenceThreshold
	if threshold <= 0 {
		threshold = o.confidenceThreshold
	}
	low := identifyLowConfidence(req.WordConfidences, threshold)
	if len(low) == 0 {
		return res
	}

	terms, err := o.store.Terms(ctx, req.SessionID)
	if err != nil {
		o.log.Warn("corpus read failed", "session_id", req.SessionID, "error", err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("correction skipped: corpus unavailable: %v", err))
		failed = true
		return res
	}
	if len(terms) == 0 {
		return res
	}

	queries := buildSearchQueries(low, req.WordConfidences)
	candidates, warnings := o.retrieveCandidates(ctx, req.SessionID, queries, indexTerms(terms))
	res.Warnings = append(res.Warnings, warnings...)
	failed = failed || len(warnings) > 0
	candidateCount = len(candidates)
	res.TermsRetrieved = len(candidates)
	if len(candidates) == 0 {
		return res
	}

	corrected, details, genFailed := o.correctWith(ctx, req.Transcript, low, candidates, res)
	failed = failed || genFailed

	if corrected != req.Transcript {
		res.CorrectedTranscript = corrected
		res.WasModified = true
	}
	if len(details) > 0 {
		res.Corrections = details
	}
	return res
}

// correctWith applies the generative stage when configured, falling back to
// rule-based correction on any generative failure. It reports whether the
// generative stage failed.
func (o *Orchestrator) correctWith(ctx context.Context, transcript string, low []lowWord, candidates []types.CorrectionCandidate, res *types.CorrectionResult) (string, []types.CorrectionDetail, bool) {
	if o.generative == nil {
		corrected, details := o.applyRuleBased(transcript, low, candidates)
		return corrected, details, false
	}

	lowWords := make([]string, len(low))
	for i, lw := range low {
		lowWords[i] = lw.Word
	}

	genCtx, cancel := context.WithTimeout(ctx, o.llmTimeout)
	defer cancel()

	genStart := time.Now()
	corrected, details, err := o.generative.CorrectTranscript(genCtx, transcript, lowWords, candidates)
	if o.metrics != nil {
		o.metrics.GenerativeDuration.Record(ctx, time.Since(genStart).Seconds())
	}
	if err != nil {
		gerr := &GenerativeError{Err: err}
		o.log.Warn("generative correction failed, falling back to rules", "error", err)
		res.Warnings = append(res.Warnings, gerr.Error())
		corrected, details := o.applyRuleBased(transcript, low, candidates)
		return corrected, details, true
	}
	return corrected, details, false
}
