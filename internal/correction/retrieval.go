package correction

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/islamborghini/livecaps/internal/phonetic"
	"github.com/islamborghini/livecaps/pkg/types"
)

// Mode selects which retrieval strategies feed the candidate pool.
type Mode string

const (
	// ModePhonetic retrieves candidates by sound-alike matching only.
	ModePhonetic Mode = "phonetic"

	// ModeSemantic retrieves candidates by vector similarity only.
	ModeSemantic Mode = "semantic"

	// ModeHybrid combines both strategies with configurable weights.
	ModeHybrid Mode = "hybrid"
)

// IsValid reports whether m is a recognised retrieval mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModePhonetic, ModeSemantic, ModeHybrid:
		return true
	}
	return false
}

const (
	// maxQueriesPerRequest bounds retrieval fan-out for a single transcript.
	maxQueriesPerRequest = 5

	// maxSemanticConcurrency bounds in-flight vector search calls.
	maxSemanticConcurrency = 3

	// semanticTopK is how many hits each semantic query asks for.
	semanticTopK = 10
)

// termIndex is a per-request snapshot of the session corpus with phonetic
// fingerprints precomputed, so that every query variant scores against the
// same prepared pool.
type termIndex struct {
	set       *phonetic.TermSet
	bySurface map[string]types.ReferenceTerm
}

// indexTerms prepares the phonetic lookup structures for one corpus snapshot.
func indexTerms(terms []types.ReferenceTerm) *termIndex {
	surfaces := make([]string, 0, len(terms))
	bySurface := make(map[string]types.ReferenceTerm, len(terms))
	for _, t := range terms {
		key := strings.ToLower(t.Term)
		if _, dup := bySurface[key]; dup {
			continue
		}
		bySurface[key] = t
		surfaces = append(surfaces, t.Term)
	}
	return &termIndex{
		set:       phonetic.PrepareTerms(surfaces),
		bySurface: bySurface,
	}
}

// lookup resolves a matched surface form back to its reference term.
func (ix *termIndex) lookup(surface string) (types.ReferenceTerm, bool) {
	t, ok := ix.bySurface[strings.ToLower(surface)]
	return t, ok
}

// scorePair accumulates the best phonetic and semantic scores observed for
// one candidate term across all queries.
type scorePair struct {
	term     types.ReferenceTerm
	phonetic float64
	semantic float64
	exact    bool
}

// retrieveCandidates gathers correction candidates for the given queries from
// the session corpus. Phonetic retrieval runs in-process against ix; semantic
// retrieval fans out to the vector searcher with bounded concurrency. A failed
// semantic query contributes a warning and is dropped; retrieval as a whole
// never fails.
func (o *Orchestrator) retrieveCandidates(ctx context.Context, sessionID string, queries []string, ix *termIndex) ([]types.CorrectionCandidate, []string) {
	if len(queries) > maxQueriesPerRequest {
		queries = queries[:maxQueriesPerRequest]
	}

	pairs := make(map[string]*scorePair)
	merge := func(t types.ReferenceTerm, phon, sem float64, exact bool) {
		key := t.NormalizedTerm
		if key == "" {
			key = strings.ToLower(t.Term)
		}
		p, ok := pairs[key]
		if !ok {
			p = &scorePair{term: t}
			pairs[key] = p
		}
		if phon > p.phonetic {
			p.phonetic = phon
		}
		if sem > p.semantic {
			p.semantic = sem
		}
		p.exact = p.exact || exact
	}

	if o.mode != ModeSemantic {
		for _, q := range queries {
			for _, m := range o.matcher.FindSimilarPrepared(q, ix.set) {
				t, ok := ix.lookup(m.Term)
				if !ok {
					continue
				}
				score := m.Score
				if score > 1 {
					score = 1
				}
				merge(t, score, 0, m.Method == phonetic.MethodExact)
			}
		}
	}

	var warnings []string
	if o.mode != ModePhonetic && o.searcher != nil {
		var mu sync.Mutex
		sem := semaphore.NewWeighted(maxSemanticConcurrency)
		g, gctx := errgroup.WithContext(ctx)
		for _, q := range queries {
			g.Go(func() error {
				if err := sem.Acquire(gctx, 1); err != nil {
					return nil
				}
				defer sem.Release(1)

				hits, err := o.searcher.Search(gctx, sessionID, q, semanticTopK)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					rerr := &RetrievalError{Query: q, Err: err}
					o.log.Warn("semantic retrieval failed", "query", q, "error", err)
					warnings = append(warnings, rerr.Error())
					return nil
				}
				for _, h := range hits {
					merge(h.Term, 0, clamp01(h.Score), false)
				}
				return nil
			})
		}
		// The goroutines report failures via warnings, never via errors.
		_ = g.Wait()
	}

	// Weighted blending only applies when both strategies contributed; a
	// single-strategy run keeps that strategy's score undiluted.
	phoneticRan := o.mode != ModeSemantic
	semanticRan := o.mode != ModePhonetic && o.searcher != nil

	candidates := make([]types.CorrectionCandidate, 0, len(pairs))
	for _, p := range pairs {
		c := types.CorrectionCandidate{
			Term:          p.term,
			PhoneticScore: p.phonetic,
			SemanticScore: p.semantic,
		}
		switch {
		case phoneticRan && semanticRan:
			c.CombinedScore = o.semanticWeight*p.semantic + o.phoneticWeight*p.phonetic
		case phoneticRan:
			c.CombinedScore = p.phonetic
		default:
			c.CombinedScore = p.semantic
		}
		// Exact hits come out of the phonetic index, so they report as
		// phonetic; candidates only ever carry the two retrieval strategies.
		if p.exact || p.phonetic > p.semantic {
			c.MatchType = types.MatchPhonetic
		} else {
			c.MatchType = types.MatchSemantic
		}
		candidates = append(candidates, c)
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].CombinedScore > candidates[b].CombinedScore
	})
	return candidates, warnings
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
