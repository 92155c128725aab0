package terms

import (
	"strings"

	"github.com/islamborghini/livecaps/pkg/types"
)

// contextJoiner separates snippets from different documents in a merged
// term's context.
const contextJoiner = " | "

// Merge combines term lists from multiple documents into one corpus.
//
// Terms are unioned by normalized form. For duplicates, frequencies are
// summed, distinguishable context snippets are concatenated, the
// higher-weight category wins, and the proper-noun flag is the OR of the
// inputs. The earliest surface form and source are kept. The merged list is
// re-ranked by frequency × category weight.
func Merge(lists ...[]types.ReferenceTerm) []types.ReferenceTerm {
	byKey := make(map[string]*types.ReferenceTerm)
	var order []string

	for _, list := range lists {
		for _, t := range list {
			key := t.NormalizedTerm
			if key == "" {
				key = strings.ToLower(t.Term)
			}
			existing, ok := byKey[key]
			if !ok {
				merged := t
				merged.NormalizedTerm = key
				byKey[key] = &merged
				order = append(order, key)
				continue
			}

			existing.Frequency += t.Frequency
			if t.Context != "" && !strings.Contains(existing.Context, t.Context) {
				if existing.Context == "" {
					existing.Context = t.Context
				} else {
					existing.Context += contextJoiner + t.Context
				}
			}
			if t.Category.Weight() > existing.Category.Weight() {
				existing.Category = t.Category
			}
			if t.IsProperNoun {
				existing.IsProperNoun = true
			}
		}
	}

	merged := make([]types.ReferenceTerm, 0, len(order))
	for _, key := range order {
		merged = append(merged, *byKey[key])
	}
	rankTerms(merged)
	return merged
}
