package terms

import (
	"regexp"
	"strings"
	"unicode"
)

// abbrevPlaceholder temporarily replaces periods inside protected
// abbreviations so sentence splitting does not break on them.
const abbrevPlaceholder = "\x00"

var (
	// titleAbbrevRe matches honorific and title abbreviations ("Dr.", "Prof.").
	titleAbbrevRe = regexp.MustCompile(`\b(Mr|Mrs|Ms|Dr|Prof|Sr|Jr|St|vs|etc|Inc|Ltd|Co)\.`)

	// dottedSeqRe matches runs of two or more dotted single letters ("U.S.A.").
	dottedSeqRe = regexp.MustCompile(`\b(?:[A-Za-z]\.){2,}`)
)

// SplitSentences splits text into sentences.
//
// Periods inside known abbreviation patterns (title prefixes and dotted
// single-letter sequences) are protected with a placeholder first, then the
// text is split at [.!?] runs followed by whitespace and a capital letter, or
// by end of input. Empty or whitespace-only input yields nil.
func SplitSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	protected := titleAbbrevRe.ReplaceAllStringFunc(text, protectPeriods)
	protected = dottedSeqRe.ReplaceAllStringFunc(protected, protectPeriods)

	var sentences []string
	runes := []rune(protected)
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		// Consume the full terminator run ("?!", "...").
		end := i
		for end+1 < len(runes) && isTerminator(runes[end+1]) {
			end++
		}

		// Find the next non-space rune; only split when it starts a new
		// sentence (capital letter) or the text ends.
		next := end + 1
		sawSpace := false
		for next < len(runes) && unicode.IsSpace(runes[next]) {
			sawSpace = true
			next++
		}
		if next < len(runes) && (!sawSpace || !unicode.IsUpper(runes[next])) {
			i = end
			continue
		}

		if s := restorePeriods(strings.TrimSpace(string(runes[start : end+1]))); s != "" {
			sentences = append(sentences, s)
		}
		start = next
		i = end
	}

	if s := restorePeriods(strings.TrimSpace(string(runes[start:]))); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// isTerminator reports whether r ends a sentence.
func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// protectPeriods swaps every period in s for the placeholder rune.
func protectPeriods(s string) string {
	return strings.ReplaceAll(s, ".", abbrevPlaceholder)
}

// restorePeriods reverses [protectPeriods].
func restorePeriods(s string) string {
	return strings.ReplaceAll(s, abbrevPlaceholder, ".")
}

// buildSentenceIndex maps each lowercase word to the indices of the sentences
// it appears in, giving O(1) context lookup during extraction.
func buildSentenceIndex(sentences []string) map[string][]int {
	index := make(map[string][]int)
	for i, s := range sentences {
		seen := make(map[string]struct{})
		for _, w := range splitWords(s) {
			lw := strings.ToLower(w)
			if _, dup := seen[lw]; dup {
				continue
			}
			seen[lw] = struct{}{}
			index[lw] = append(index[lw], i)
		}
	}
	return index
}

// splitWords splits s into word tokens, keeping letters, digits, and the
// intra-word punctuation that identifies technical terms (-, _, ., /).
func splitWords(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) &&
			r != '-' && r != '_' && r != '.' && r != '/'
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		// Trailing sentence punctuation survives FieldsFunc for dotted
		// tokens; trim it unless the token is a dotted abbreviation.
		if !dottedSeqRe.MatchString(f) {
			f = strings.Trim(f, ".-_/")
		}
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

// contextWindow is the fallback context radius in characters when no sentence
// contains the term.
const contextWindow = 100

// extractContext returns the first sentence containing term plus up to
// maxSentences−1 following sentences. When no sentence matches, it falls back
// to a ±100-character window around the first raw occurrence in text.
func extractContext(term string, index map[string][]int, sentences []string, text string, maxSentences int) string {
	if maxSentences < 1 {
		maxSentences = 1
	}

	lowerTerm := strings.ToLower(term)
	firstWord := lowerTerm
	if i := strings.IndexByte(lowerTerm, ' '); i > 0 {
		firstWord = lowerTerm[:i]
	}

	for _, si := range index[firstWord] {
		if !strings.Contains(strings.ToLower(sentences[si]), lowerTerm) {
			continue
		}
		end := si + maxSentences
		if end > len(sentences) {
			end = len(sentences)
		}
		return strings.Join(sentences[si:end], " ")
	}

	// Fallback: raw character window.
	pos := strings.Index(strings.ToLower(text), lowerTerm)
	if pos < 0 {
		return ""
	}
	start := pos - contextWindow
	if start < 0 {
		start = 0
	}
	end := pos + len(term) + contextWindow
	if end > len(text) {
		end = len(text)
	}
	return strings.TrimSpace(text[start:end])
}
