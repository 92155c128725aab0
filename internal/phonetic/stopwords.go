package phonetic

import "strings"

// stopWords is the shared English stop-word list used by phrase fingerprinting
// and by the term extractor. Kept deliberately small: only words that carry no
// phonetic signal for domain-term matching.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "been": {}, "but": {}, "by": {},
	"can": {}, "could": {},
	"do": {}, "does": {},
	"for": {}, "from": {},
	"had": {}, "has": {}, "have": {}, "he": {}, "her": {}, "his": {}, "how": {},
	"i": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "its": {},
	"may": {}, "my": {},
	"no": {}, "not": {},
	"of": {}, "on": {}, "or": {}, "our": {},
	"she": {}, "should": {}, "so": {}, "some": {}, "such": {},
	"than": {}, "that": {}, "the": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {}, "to": {},
	"was": {}, "we": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "who": {}, "will": {}, "with": {}, "would": {},
	"you": {}, "your": {},
}

// IsStopWord reports whether word (case-insensitive) is an English stop word.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}
