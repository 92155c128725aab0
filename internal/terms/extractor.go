// Package terms turns raw document text into a ranked, classified corpus of
// reference terms for transcript correction.
//
// The [Extractor] runs several passes over the input: word-level extraction
// (acronyms, technical identifiers, proper nouns, frequent words), a
// proper-noun phrase scan for multi-word names, and a heading scan. Each kept
// term carries a context snippet, a phonetic fingerprint, and a category, and
// the combined list is ranked by frequency × category weight so the terms an
// STT engine is most likely to mishear rank first.
//
// Extraction is deterministic for identical input and configuration, performs
// no I/O, and never returns a stop word as a term.
package terms

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/islamborghini/livecaps/internal/phonetic"
	"github.com/islamborghini/livecaps/pkg/types"
)

const (
	defaultMinFrequency        = 2
	defaultMaxContextSentences = 2
	defaultMaxPhrases          = 200
)

// Option is a functional option for configuring an [Extractor].
type Option func(*Extractor)

// WithMinFrequency sets how often an ordinary word must occur before it is
// kept as a term. Acronyms, technical identifiers, and proper nouns are always
// kept regardless of frequency. Default: 2.
func WithMinFrequency(n int) Option {
	return func(e *Extractor) {
		e.minFrequency = n
	}
}

// WithMaxContextSentences sets how many consecutive sentences a term's
// context snippet may span. Default: 2.
func WithMaxContextSentences(n int) Option {
	return func(e *Extractor) {
		e.maxContextSentences = n
	}
}

// WithMaxPhrases caps how many proper-noun phrases the phrase pass may emit,
// bounding extraction cost on pathological documents. Default: 200.
func WithMaxPhrases(n int) Option {
	return func(e *Extractor) {
		e.maxPhrases = n
	}
}

// Extractor builds reference-term corpora from plain text. It is read-only
// after construction and safe for concurrent use.
type Extractor struct {
	minFrequency        int
	maxContextSentences int
	maxPhrases          int
}

// New returns an [Extractor] configured with the supplied options.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		minFrequency:        defaultMinFrequency,
		maxContextSentences: defaultMaxContextSentences,
		maxPhrases:          defaultMaxPhrases,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// PhoneticCodeFor computes the stored fingerprint for a term: the Soundex
// code for single words, or the phrase code over up to three non-stop-word
// tokens for multi-word terms.
func PhoneticCodeFor(term string) string {
	return phonetic.PhraseCode(term, phonetic.AlgorithmSoundex)
}

// Extract runs all extraction passes over text and returns the ranked,
// classified term list. sourceID identifies the originating document and is
// stamped on every term. Empty input yields an empty slice.
func (e *Extractor) Extract(text, sourceID string) []types.ReferenceTerm {
	if strings.TrimSpace(text) == "" {
		return []types.ReferenceTerm{}
	}

	sentences := SplitSentences(text)
	index := buildSentenceIndex(sentences)
	sentenceStarts := sentenceStartWords(sentences)

	type occurrence struct {
		surface string
		count   int
	}
	counts := make(map[string]*occurrence)
	var order []string

	for _, w := range splitWords(text) {
		lw := strings.ToLower(w)
		if len(lw) < 2 || phonetic.IsStopWord(lw) {
			continue
		}
		occ, ok := counts[lw]
		if !ok {
			occ = &occurrence{surface: w}
			counts[lw] = occ
			order = append(order, lw)
		}
		occ.count++
	}

	byKey := make(map[string]types.ReferenceTerm)
	var keys []string
	add := func(t types.ReferenceTerm) {
		if _, dup := byKey[t.NormalizedTerm]; dup {
			return
		}
		byKey[t.NormalizedTerm] = t
		keys = append(keys, t.NormalizedTerm)
	}

	// Pass 1: single words.
	for _, lw := range order {
		occ := counts[lw]
		word := occ.surface
		_, atStart := sentenceStarts[lw]

		acronym := IsAcronym(word)
		technical := IsTechnical(word)
		proper := IsProperNoun(word, atStart)
		if !acronym && !technical && !proper && occ.count < e.minFrequency {
			continue
		}

		context := extractContext(word, index, sentences, text, e.maxContextSentences)
		add(types.ReferenceTerm{
			Term:           word,
			NormalizedTerm: lw,
			Context:        context,
			SourceID:       sourceID,
			PhoneticCode:   PhoneticCodeFor(word),
			Frequency:      occ.count,
			IsProperNoun:   proper,
			Category:       Categorize(word, context, false),
		})
	}

	// Pass 2: headings. These run before the phrase pass so a heading that is
	// also a capitalized phrase keeps the heading category.
	for _, heading := range extractHeadings(text) {
		add(types.ReferenceTerm{
			Term:           heading,
			NormalizedTerm: strings.ToLower(heading),
			Context:        extractContext(heading, index, sentences, text, e.maxContextSentences),
			SourceID:       sourceID,
			PhoneticCode:   PhoneticCodeFor(heading),
			Frequency:      1,
			IsProperNoun:   false,
			Category:       types.CategoryHeading,
		})
	}

	// Pass 3: proper-noun phrases.
	for _, phrase := range e.extractProperNounPhrases(text) {
		context := extractContext(phrase, index, sentences, text, e.maxContextSentences)
		add(types.ReferenceTerm{
			Term:           phrase,
			NormalizedTerm: strings.ToLower(phrase),
			Context:        context,
			SourceID:       sourceID,
			PhoneticCode:   PhoneticCodeFor(phrase),
			Frequency:      1,
			IsProperNoun:   true,
			Category:       Categorize(phrase, context, false),
		})
	}

	result := make([]types.ReferenceTerm, 0, len(keys))
	for _, k := range keys {
		result = append(result, byKey[k])
	}
	rankTerms(result)
	return result
}

// rankTerms sorts terms by frequency × category weight, descending, with a
// lexicographic tie-break on the normalized form for determinism.
func rankTerms(terms []types.ReferenceTerm) {
	sort.SliceStable(terms, func(i, j int) bool {
		si := float64(terms[i].Frequency) * terms[i].Category.Weight()
		sj := float64(terms[j].Frequency) * terms[j].Category.Weight()
		if si != sj {
			return si > sj
		}
		return terms[i].NormalizedTerm < terms[j].NormalizedTerm
	})
}

// sentenceStartWords returns the lowercase first word of every sentence.
func sentenceStartWords(sentences []string) map[string]struct{} {
	starts := make(map[string]struct{}, len(sentences))
	for _, s := range sentences {
		words := splitWords(s)
		if len(words) > 0 {
			starts[strings.ToLower(words[0])] = struct{}{}
		}
	}
	return starts
}

// phraseConnectors may join capitalized words inside one proper-noun phrase
// ("Bank of America", "Lord of the Rings").
var phraseConnectors = map[string]struct{}{
	"of": {}, "the": {}, "and": {}, "for": {},
}

// phraseStopStarters are generic sentence openers that produce junk phrases
// when combined with a following proper noun.
var phraseStopStarters = map[string]struct{}{
	"this": {}, "that": {}, "these": {}, "those": {}, "there": {},
	"here": {}, "it": {}, "the": {}, "a": {}, "an": {},
}

// extractProperNounPhrases scans for runs of two or more capitalized words,
// optionally connected by of/the/and/for, deduplicates them, and caps the
// total to bound cost. Runs never cross line boundaries.
func (e *Extractor) extractProperNounPhrases(text string) []string {
	seen := make(map[string]struct{})
	var phrases []string

	flush := func(run []string) {
		// Trim trailing connectors left by runs like "Bank of".
		for len(run) > 0 {
			if _, conn := phraseConnectors[strings.ToLower(run[len(run)-1])]; !conn {
				break
			}
			run = run[:len(run)-1]
		}
		if countCapitalized(run) < 2 {
			return
		}
		if _, bad := phraseStopStarters[strings.ToLower(run[0])]; bad {
			return
		}
		phrase := strings.Join(run, " ")
		key := strings.ToLower(phrase)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		phrases = append(phrases, phrase)
	}

	for _, line := range strings.Split(text, "\n") {
		var run []string
		for _, tok := range strings.Fields(line) {
			if len(phrases) >= e.maxPhrases {
				break
			}
			word := strings.TrimFunc(tok, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r)
			})
			if word == "" {
				flush(run)
				run = nil
				continue
			}

			if isCapitalizedWord(word) {
				run = append(run, word)
				continue
			}
			if _, conn := phraseConnectors[strings.ToLower(word)]; conn && len(run) > 0 {
				run = append(run, word)
				continue
			}
			flush(run)
			run = nil
		}
		flush(run)
	}

	if len(phrases) > e.maxPhrases {
		phrases = phrases[:e.maxPhrases]
	}
	return phrases
}

// countCapitalized returns how many words in run begin with an uppercase letter.
func countCapitalized(run []string) int {
	n := 0
	for _, w := range run {
		if isCapitalizedWord(w) {
			n++
		}
	}
	return n
}

// isCapitalizedWord reports whether w starts uppercase and continues lowercase.
func isCapitalizedWord(w string) bool {
	runes := []rune(w)
	if len(runes) < 2 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

var (
	markdownHeadingRe = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
	numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)*[.)]?\s+([A-Z].*)$`)
)

// maxHeadingWords bounds how long a line may be and still count as a heading.
const maxHeadingWords = 8

// extractHeadings finds heading lines: markdown-style hashes, short ALL-CAPS
// lines, and numbered section titles.
func extractHeadings(text string) []string {
	seen := make(map[string]struct{})
	var headings []string

	add := func(h string) {
		h = strings.TrimSpace(h)
		if h == "" {
			return
		}
		key := strings.ToLower(h)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		headings = append(headings, h)
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := markdownHeadingRe.FindStringSubmatch(line); m != nil {
			add(m[1])
			continue
		}
		if m := numberedHeadingRe.FindStringSubmatch(line); m != nil {
			add(m[2])
			continue
		}
		if isAllCapsHeading(line) {
			add(line)
		}
	}
	return headings
}

// isAllCapsHeading reports whether line is a short all-caps line with no
// sentence punctuation — the typical plain-text section heading.
func isAllCapsHeading(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > maxHeadingWords {
		return false
	}
	if strings.HasSuffix(line, ".") {
		return false
	}
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return letters >= 2
}
