// Package llmcorrect implements generative transcript correction on top of a
// language model provider.
//
// The model receives the transcript, the low-confidence words, and the
// retrieved reference terms, and is asked for a strict JSON verdict. Model
// output is notoriously loose, so parsing degrades through several formats
// before giving up; an unparsable response is an error, which the pipeline
// above translates into a rule-based fallback.
package llmcorrect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/islamborghini/livecaps/internal/correction"
	"github.com/islamborghini/livecaps/pkg/provider/llm"
	"github.com/islamborghini/livecaps/pkg/types"
)

// Compile-time interface check.
var _ correction.GenerativeCorrector = (*Corrector)(nil)

// llmConfidence is the confidence recorded on model-made replacements. The
// model reports no calibrated score, so a fixed moderate value is used.
const llmConfidence = 0.6

// maxCandidatesInPrompt caps how many reference terms are listed in the
// prompt, highest combined score first.
const maxCandidatesInPrompt = 20

const systemPrompt = `You correct speech-recognition errors in live captions.
You receive a transcript, the words the recognizer was unsure about, and a
list of reference terms that are likely to appear in this session.

Replace misheard words with reference terms ONLY when the sounds clearly
match. Never rephrase, reorder, or add words. When nothing should change,
return the transcript unchanged.

Respond with strict JSON, no prose, in this shape:
{"correctedTranscript": "...", "corrections": [{"original": "...", "corrected": "..."}]}`

// Option configures a [Corrector].
type Option func(*Corrector)

// WithLogger sets the logger. Default: [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(c *Corrector) {
		c.log = log
	}
}

// WithTemperature sets the sampling temperature. Default: 0.1.
func WithTemperature(t float64) Option {
	return func(c *Corrector) {
		c.temperature = t
	}
}

// WithMaxTokens caps the completion length. Default: 1024.
func WithMaxTokens(n int) Option {
	return func(c *Corrector) {
		c.maxTokens = n
	}
}

// Corrector asks a language model to fix mishearings in a transcript. It is
// safe for concurrent use.
type Corrector struct {
	provider    llm.Provider
	log         *slog.Logger
	temperature float64
	maxTokens   int
}

// New returns a [Corrector] backed by provider.
func New(provider llm.Provider, opts ...Option) *Corrector {
	c := &Corrector{
		provider:    provider,
		log:         slog.Default(),
		temperature: 0.1,
		maxTokens:   1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CorrectTranscript sends the transcript to the model and parses its verdict.
// Returns the corrected transcript and one detail per replacement the model
// reported.
func (c *Corrector) CorrectTranscript(ctx context.Context, transcript string, lowWords []string, candidates []types.CorrectionCandidate) (string, []types.CorrectionDetail, error) {
	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []types.Message{
			{Role: "user", Content: buildUserPrompt(transcript, lowWords, candidates)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", nil, fmt.Errorf("llmcorrect: completion: %w", err)
	}

	verdict, err := parseVerdict(resp.Content, transcript)
	if err != nil {
		c.log.Warn("unparsable model verdict", "model", c.provider.ModelID(), "error", err)
		return "", nil, fmt.Errorf("llmcorrect: parse verdict: %w", err)
	}

	details := make([]types.CorrectionDetail, 0, len(verdict.Corrections))
	for _, rep := range verdict.Corrections {
		if rep.Original == "" || rep.Corrected == "" || strings.EqualFold(rep.Original, rep.Corrected) {
			continue
		}
		details = append(details, types.CorrectionDetail{
			Original:    rep.Original,
			Corrected:   rep.Corrected,
			Reason:      "language model correction",
			Confidence:  llmConfidence,
			MatchedTerm: matchCandidate(rep.Corrected, candidates),
			MatchType:   types.MatchLLM,
			Position:    -1,
		})
	}
	return verdict.CorrectedTranscript, details, nil
}

// buildUserPrompt renders the per-request portion of the prompt.
func buildUserPrompt(transcript string, lowWords []string, candidates []types.CorrectionCandidate) string {
	var b strings.Builder

	b.WriteString("Reference terms:\n")
	n := len(candidates)
	if n > maxCandidatesInPrompt {
		n = maxCandidatesInPrompt
	}
	for _, cand := range candidates[:n] {
		fmt.Fprintf(&b, "- %s (%s)", cand.Term.Term, cand.Term.Category)
		if ctx := strings.TrimSpace(cand.Term.Context); ctx != "" {
			fmt.Fprintf(&b, ": %s", ctx)
		}
		b.WriteByte('\n')
	}

	b.WriteString("\nUncertain words: ")
	b.WriteString(strings.Join(lowWords, ", "))
	b.WriteString("\n\nTranscript:\n")
	b.WriteString(transcript)
	return b.String()
}

// matchCandidate resolves a replacement back to the candidate term it names,
// falling back to the replacement itself.
func matchCandidate(corrected string, candidates []types.CorrectionCandidate) string {
	for _, cand := range candidates {
		if strings.EqualFold(cand.Term.Term, corrected) {
			return cand.Term.Term
		}
	}
	return corrected
}

// verdict is the model's parsed response.
type verdict struct {
	CorrectedTranscript string        `json:"correctedTranscript"`
	Corrections         []replacement `json:"corrections"`
}

type replacement struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
}

// parseVerdict extracts a [verdict] from raw model output. It tries, in
// order: strict JSON, JSON inside a markdown code fence, the first {...}
// block anywhere in the output, and finally prose replacement lines of the
// form "original -> corrected" applied to the input transcript.
func parseVerdict(content, transcript string) (*verdict, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("empty response")
	}

	for _, raw := range []string{content, stripFence(content), firstJSONObject(content)} {
		if raw == "" {
			continue
		}
		var v verdict
		if err := json.Unmarshal([]byte(raw), &v); err == nil && v.CorrectedTranscript != "" {
			return &v, nil
		}
	}

	if v := parseProseReplacements(content, transcript); v != nil {
		return v, nil
	}
	return nil, fmt.Errorf("no verdict in %d bytes of output", len(content))
}

// stripFence removes a surrounding markdown code fence, with or without a
// language tag.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return ""
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// firstJSONObject returns the first balanced {...} block in s, or "".
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// proseArrows are the separators accepted in prose replacement lines.
var proseArrows = []string{"->", "→"}

// parseProseReplacements handles models that answer with lines such as
// "cooper netties -> Kubernetes" instead of JSON. The replacements are
// applied to transcript to reconstruct the corrected text. Returns nil when
// no replacement line is found.
func parseProseReplacements(content, transcript string) *verdict {
	corrected := transcript
	var reps []replacement
	for line := range strings.Lines(content) {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• "))
		for _, arrow := range proseArrows {
			before, after, found := strings.Cut(line, arrow)
			if !found {
				continue
			}
			orig := strings.Trim(strings.TrimSpace(before), `"'`)
			repl := strings.Trim(strings.TrimSpace(after), `"'.`)
			if orig == "" || repl == "" || strings.EqualFold(orig, repl) {
				break
			}
			if next := replaceFold(corrected, orig, repl); next != corrected {
				corrected = next
				reps = append(reps, replacement{Original: orig, Corrected: repl})
			}
			break
		}
	}
	if len(reps) == 0 {
		return nil
	}
	return &verdict{CorrectedTranscript: corrected, Corrections: reps}
}

// replaceFold replaces the first case-insensitive occurrence of old in s.
func replaceFold(s, old, repl string) string {
	idx := strings.Index(strings.ToLower(s), strings.ToLower(old))
	if idx < 0 {
		return s
	}
	return s[:idx] + repl + s[idx+len(old):]
}
