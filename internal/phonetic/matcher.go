// Package phonetic implements sound-alike fingerprinting and similarity
// scoring for transcript correction.
//
// Two codecs are provided: [SoundexCode], the classic four-symbol Soundex
// code, and [RichCode], a more expressive Metaphone-style encoding. Phrase
// fingerprints ([PhraseCode]) combine per-word codes for multi-word terms.
// [Similarity] blends code-distance and word-alignment strategies into a
// single score, and [Matcher] ranks a pool of candidate terms against a query.
//
// Everything in this package is deterministic, performs no I/O, and never
// panics on any input. A [Matcher] is read-only after construction and safe
// for concurrent use; a [TermSet] precomputes per-term fingerprints so that
// repeated lookups against the same corpus snapshot avoid re-encoding.
package phonetic

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultMinSimilarity  = 0.5
	defaultExactBoost     = 0.2
	defaultHighConfidence = 0.8
	defaultMaxResults     = 10

	// maxScore bounds boosted exact-match scores.
	maxScore = 1.2
)

// Match is a scored candidate term returned by a [Matcher].
type Match struct {
	// Term is the candidate's surface form from the pool.
	Term string

	// Score is the similarity score. Exact matches may exceed 1.0 (bounded
	// by 1.2) when an exact-match boost is configured.
	Score float64

	// Method identifies the scoring strategy that produced Score.
	Method Method
}

// Option is a functional option for configuring a [Matcher].
type Option func(*Matcher)

// WithMinSimilarity sets the minimum score a candidate must reach to be
// returned at all. Default: 0.5.
func WithMinSimilarity(min float64) Option {
	return func(m *Matcher) {
		m.minSimilarity = min
	}
}

// WithExactBoost sets the boost added to exact case-insensitive matches so
// they always outrank near-misses. The boosted score is capped at 1.2.
// Default: 0.2.
func WithExactBoost(boost float64) Option {
	return func(m *Matcher) {
		m.exactBoost = boost
	}
}

// WithHighConfidence sets the score above which [Matcher.FindBestMatch]
// accepts the raw query's best hit without trying compound-split expansion.
// Default: 0.8.
func WithHighConfidence(cutoff float64) Option {
	return func(m *Matcher) {
		m.highConfidence = cutoff
	}
}

// WithMaxResults caps how many matches [Matcher.FindSimilarTerms] returns.
// Default: 10.
func WithMaxResults(n int) Option {
	return func(m *Matcher) {
		m.maxResults = n
	}
}

// Matcher scores and ranks candidate terms against queries. It is read-only
// after construction and safe for concurrent use.
type Matcher struct {
	minSimilarity  float64
	exactBoost     float64
	highConfidence float64
	maxResults     int
}

// New returns a [Matcher] configured with the supplied options.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		minSimilarity:  defaultMinSimilarity,
		exactBoost:     defaultExactBoost,
		highConfidence: defaultHighConfidence,
		maxResults:     defaultMaxResults,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// TermSet holds a pool of candidate terms with their fingerprints precomputed
// once, so that compound-split expansion (which evaluates many query variants
// against the same pool) does not re-encode every term per variant.
type TermSet struct {
	terms     []string
	lower     []string
	soundex   []string
	rich      []string
	wordCodes [][]string
	wordCount []int
}

// PrepareTerms precomputes the fingerprints for terms. The returned [TermSet]
// is read-only and safe for concurrent use.
func PrepareTerms(terms []string) *TermSet {
	ts := &TermSet{
		terms:     make([]string, 0, len(terms)),
		lower:     make([]string, 0, len(terms)),
		soundex:   make([]string, 0, len(terms)),
		rich:      make([]string, 0, len(terms)),
		wordCodes: make([][]string, 0, len(terms)),
		wordCount: make([]int, 0, len(terms)),
	}
	for _, t := range terms {
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			continue
		}
		words := strings.Fields(strings.ToLower(trimmed))
		codes := make([]string, len(words))
		for i, w := range words {
			codes[i] = SoundexCode(w)
		}
		ts.terms = append(ts.terms, trimmed)
		ts.lower = append(ts.lower, strings.ToLower(trimmed))
		ts.soundex = append(ts.soundex, PhraseCode(trimmed, AlgorithmSoundex))
		ts.rich = append(ts.rich, PhraseCode(trimmed, AlgorithmRich))
		ts.wordCodes = append(ts.wordCodes, codes)
		ts.wordCount = append(ts.wordCount, len(words))
	}
	return ts
}

// Len returns the number of terms in the set.
func (ts *TermSet) Len() int { return len(ts.terms) }

// Terms returns the surface forms in the set, in preparation order.
func (ts *TermSet) Terms() []string { return ts.terms }

// queryCodes caches a query's fingerprints for scoring against a [TermSet].
type queryCodes struct {
	raw       string
	lower     string
	soundex   string
	rich      string
	wordCodes []string
	wordCount int
}

// prepareQuery computes the query-side fingerprints once per query variant.
func prepareQuery(query string) queryCodes {
	trimmed := strings.TrimSpace(query)
	words := strings.Fields(strings.ToLower(trimmed))
	codes := make([]string, len(words))
	for i, w := range words {
		codes[i] = SoundexCode(w)
	}
	return queryCodes{
		raw:       trimmed,
		lower:     strings.ToLower(trimmed),
		soundex:   PhraseCode(trimmed, AlgorithmSoundex),
		rich:      PhraseCode(trimmed, AlgorithmRich),
		wordCodes: codes,
		wordCount: len(words),
	}
}

// scoreAgainst scores the prepared query against term i of ts, applying the
// exact-match boost. The three non-exact strategies mirror [Similarity].
func (m *Matcher) scoreAgainst(q queryCodes, ts *TermSet, i int) (float64, Method) {
	if q.raw == "" {
		return 0, MethodAlignment
	}
	if q.lower == ts.lower[i] {
		score := 1.0 + m.exactBoost
		if score > maxScore {
			score = maxScore
		}
		return score, MethodExact
	}

	score := codeSimilarity(q.soundex, ts.soundex[i])
	method := MethodSoundex

	if s := codeSimilarity(q.rich, ts.rich[i]); s > score {
		score = s
		method = MethodRich
	}
	if s := alignmentPrepared(q, ts, i); s > score {
		score = s
		method = MethodAlignment
	}
	return score, method
}

// alignmentPrepared is the word-alignment strategy over precomputed codes.
func alignmentPrepared(q queryCodes, ts *TermSet, i int) float64 {
	if q.wordCount == 0 || ts.wordCount[i] == 0 {
		return 0
	}
	sum := 0.0
	for _, qc := range q.wordCodes {
		best := 0.0
		for _, tc := range ts.wordCodes[i] {
			if s := codeSimilarity(qc, tc); s > best {
				best = s
			}
		}
		sum += best
	}
	avg := sum / float64(q.wordCount)

	diff := q.wordCount - ts.wordCount[i]
	if diff < 0 {
		diff = -diff
	}
	penalty := 1 - 0.1*float64(diff)
	if penalty < 0.5 {
		penalty = 0.5
	}
	return avg * penalty
}

// FindSimilarTerms scores query against every term in pool and returns the
// matches at or above the configured minimum similarity, sorted by descending
// score and truncated to the configured maximum result count. Exact matches
// receive the configured boost so they always rank first.
func (m *Matcher) FindSimilarTerms(query string, pool []string) []Match {
	return m.FindSimilarPrepared(query, PrepareTerms(pool))
}

// FindSimilarPrepared is [Matcher.FindSimilarTerms] over a precomputed
// [TermSet].
func (m *Matcher) FindSimilarPrepared(query string, ts *TermSet) []Match {
	q := prepareQuery(query)
	if q.raw == "" || ts.Len() == 0 {
		return nil
	}

	matches := make([]Match, 0, ts.Len())
	for i := range ts.terms {
		score, method := m.scoreAgainst(q, ts, i)
		if score < m.minSimilarity {
			continue
		}
		matches = append(matches, Match{Term: ts.terms[i], Score: score, Method: method})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	if len(matches) > m.maxResults {
		matches = matches[:m.maxResults]
	}
	return matches
}

// FindBestMatch finds the single best candidate for query in pool.
//
// The raw query is evaluated first; when its best score reaches the
// high-confidence cutoff it is returned immediately. Otherwise the query is
// expanded — each word through [SplitCompoundWord], and multi-word queries
// additionally joined and re-split at every boundary — and every variant is
// evaluated. The globally best match is returned, or ok=false when nothing
// clears the minimum similarity.
func (m *Matcher) FindBestMatch(query string, pool []string) (Match, bool) {
	return m.FindBestMatchPrepared(query, PrepareTerms(pool))
}

// FindBestMatchPrepared is [Matcher.FindBestMatch] over a precomputed
// [TermSet].
func (m *Matcher) FindBestMatchPrepared(query string, ts *TermSet) (Match, bool) {
	if strings.TrimSpace(query) == "" || ts.Len() == 0 {
		return Match{}, false
	}

	best := m.bestOf(query, ts)
	if best.Score >= m.highConfidence {
		return best, true
	}

	for _, variant := range expandQuery(query) {
		cand := m.bestOf(variant, ts)
		if cand.Score > best.Score {
			best = cand
			continue
		}
		// Equal-score tie: prefer the candidate closer in spelling.
		if cand.Score == best.Score && cand.Term != "" && cand.Term != best.Term {
			lq := strings.ToLower(query)
			if matchr.JaroWinkler(lq, strings.ToLower(cand.Term), false) >
				matchr.JaroWinkler(lq, strings.ToLower(best.Term), false) {
				best = cand
			}
		}
	}

	if best.Score < m.minSimilarity {
		return Match{}, false
	}
	return best, true
}

// bestOf returns the highest-scoring match for one query variant.
func (m *Matcher) bestOf(query string, ts *TermSet) Match {
	q := prepareQuery(query)
	var best Match
	for i := range ts.terms {
		score, method := m.scoreAgainst(q, ts, i)
		if score > best.Score {
			best = Match{Term: ts.terms[i], Score: score, Method: method}
		}
	}
	return best
}

// expandQuery generates the alternative segmentations of query evaluated by
// [Matcher.FindBestMatch]: per-word compound splits, and for multi-word
// queries the fully joined form plus its re-splits.
func expandQuery(query string) []string {
	words := strings.Fields(query)
	seen := map[string]struct{}{strings.Join(words, " "): {}}
	var variants []string

	add := func(v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	for i, w := range words {
		for _, split := range SplitCompoundWord(w)[1:] {
			parts := make([]string, 0, len(words)+1)
			parts = append(parts, words[:i]...)
			parts = append(parts, split)
			parts = append(parts, words[i+1:]...)
			add(strings.Join(parts, " "))
		}
	}

	if len(words) > 1 {
		joined := strings.Join(words, "")
		add(joined)
		for _, split := range SplitCompoundWord(joined)[1:] {
			add(split)
		}
	}

	return variants
}
