package phonetic

import "strings"

// Algorithm selects which single-word codec a phrase fingerprint is built from.
type Algorithm int

const (
	// AlgorithmSoundex uses [SoundexCode] for each significant word.
	AlgorithmSoundex Algorithm = iota

	// AlgorithmRich uses [RichCode] for each significant word.
	AlgorithmRich
)

// phraseSeparator joins per-word codes into one phrase fingerprint.
const phraseSeparator = "-"

// maxPhraseWords caps how many significant words contribute to a phrase code.
// Long phrases carry most of their identity in the first few content words.
const maxPhraseWords = 3

// PhraseCode computes the phrase-level fingerprint of phrase using the chosen
// algorithm: the phrase is split on whitespace, stop words are dropped, the
// first three significant words are encoded individually, and the codes are
// joined with "-".
//
// Both algorithms apply the same stop-word filter and word cap, so soundex and
// rich phrase codes for the same phrase always describe the same words.
//
// A phrase consisting entirely of stop words falls back to encoding its raw
// words, so the result is "" only for input without letters.
func PhraseCode(phrase string, algorithm Algorithm) string {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return ""
	}

	significant := make([]string, 0, len(words))
	for _, w := range words {
		if IsStopWord(w) {
			continue
		}
		significant = append(significant, w)
	}
	if len(significant) == 0 {
		significant = words
	}
	if len(significant) > maxPhraseWords {
		significant = significant[:maxPhraseWords]
	}

	codes := make([]string, 0, len(significant))
	for _, w := range significant {
		var code string
		switch algorithm {
		case AlgorithmRich:
			code = RichCode(w)
		default:
			code = SoundexCode(w)
		}
		if code != "" {
			codes = append(codes, code)
		}
	}
	return strings.Join(codes, phraseSeparator)
}
