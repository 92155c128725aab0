package correction

import (
	"strings"

	"github.com/islamborghini/livecaps/pkg/types"
)

// lowWord is a low-confidence transcript word with its zero-based position.
type lowWord struct {
	types.WordConfidence

	// Position is the word's index in the request's confidence list.
	Position int
}

// identifyLowConfidence returns the words whose confidence is strictly below
// threshold, in original order with their positions. A word whose confidence
// equals the threshold is not low-confidence.
func identifyLowConfidence(words []types.WordConfidence, threshold float64) []lowWord {
	var low []lowWord
	for i, wc := range words {
		if wc.Confidence < threshold {
			low = append(low, lowWord{WordConfidence: wc, Position: i})
		}
	}
	return low
}

// minQueryWordLen is the shortest individual word emitted as its own query
// from a long low-confidence run. Shorter fragments are noise.
const minQueryWordLen = 3

// buildSearchQueries turns the low-confidence words into retrieval queries:
//
//   - index-adjacent low-confidence words form one phrase query per
//     contiguous run
//   - runs longer than two words additionally emit each individual word of
//     at least three characters
//   - each low-confidence word paired with a well-recognised neighbour forms
//     a two-word context query
//
// Queries are deduplicated case-insensitively, preserving first-seen order.
func buildSearchQueries(low []lowWord, all []types.WordConfidence) []string {
	if len(low) == 0 {
		return nil
	}

	lowAt := make(map[int]struct{}, len(low))
	for _, lw := range low {
		lowAt[lw.Position] = struct{}{}
	}

	seen := make(map[string]struct{})
	var queries []string
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" {
			return
		}
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		queries = append(queries, q)
	}

	// Contiguous runs become phrase queries.
	for i := 0; i < len(low); {
		j := i
		for j+1 < len(low) && low[j+1].Position == low[j].Position+1 {
			j++
		}
		run := low[i : j+1]

		words := make([]string, len(run))
		for k, lw := range run {
			words[k] = lw.Word
		}
		add(strings.Join(words, " "))

		if len(run) > 2 {
			for _, w := range words {
				if len(w) >= minQueryWordLen {
					add(w)
				}
			}
		}
		i = j + 1
	}

	// Context queries pair each low-confidence word with a confident neighbour.
	for _, lw := range low {
		if prev := lw.Position - 1; prev >= 0 {
			if _, isLow := lowAt[prev]; !isLow {
				add(all[prev].Word + " " + lw.Word)
			}
		}
		if next := lw.Position + 1; next < len(all) {
			if _, isLow := lowAt[next]; !isLow {
				add(lw.Word + " " + all[next].Word)
			}
		}
	}

	return queries
}
