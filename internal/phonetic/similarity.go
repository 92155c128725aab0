package phonetic

import (
	"math"
	"strings"

	"github.com/antzucaro/matchr"
)

// Method identifies which scoring strategy produced a similarity value.
type Method string

const (
	// MethodExact means the strings were equal case-insensitively.
	MethodExact Method = "exact"

	// MethodSoundex means the Soundex phrase-code comparison won.
	MethodSoundex Method = "soundex"

	// MethodRich means the rich (Metaphone-style) phrase-code comparison won.
	MethodRich Method = "rich"

	// MethodAlignment means the word-by-word alignment comparison won.
	MethodAlignment Method = "alignment"
)

// EditDistance returns the Levenshtein distance between a and b with unit
// cost per insertion, deletion, and substitution. Comparison is
// case-sensitive; callers working with phonetic codes pass lowercase input.
func EditDistance(a, b string) int {
	return matchr.Levenshtein(a, b)
}

// codeSimilarity converts the edit distance between two fingerprint strings
// into a similarity in [0, 1]: 1 − distance/maxLen. Two empty codes score 0 —
// absence of phonetic signal is not evidence of similarity.
func codeSimilarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	d := EditDistance(a, b)
	return 1 - float64(d)/float64(maxLen)
}

// Similarity scores how sound-alike query and target are.
//
// Exact case-insensitive equality scores 1.0 with [MethodExact]. Otherwise
// three strategies are evaluated and the maximum wins:
//
//  1. Soundex phrase codes, distance-normalised.
//  2. Rich phrase codes, distance-normalised.
//  3. Word-by-word alignment: each query word takes its best single-word
//     Soundex similarity against any target word; the per-word scores are
//     averaged and dampened by max(0.5, 1 − 0.1·|len words differ|).
//
// Similarity never errors and performs no I/O; empty input scores 0.
func Similarity(query, target string) (float64, Method) {
	q := strings.TrimSpace(query)
	t := strings.TrimSpace(target)
	if q == "" || t == "" {
		return 0, MethodAlignment
	}
	if strings.EqualFold(q, t) {
		return 1.0, MethodExact
	}

	score := codeSimilarity(PhraseCode(q, AlgorithmSoundex), PhraseCode(t, AlgorithmSoundex))
	method := MethodSoundex

	if s := codeSimilarity(PhraseCode(q, AlgorithmRich), PhraseCode(t, AlgorithmRich)); s > score {
		score = s
		method = MethodRich
	}
	if s := alignmentScore(q, t); s > score {
		score = s
		method = MethodAlignment
	}
	return score, method
}

// alignmentScore implements the word-by-word alignment strategy of
// [Similarity]. It tolerates word-boundary mismatches ("cooper netties" vs
// "kubernetes") better than whole-phrase codes do.
func alignmentScore(query, target string) float64 {
	qWords := strings.Fields(strings.ToLower(query))
	tWords := strings.Fields(strings.ToLower(target))
	if len(qWords) == 0 || len(tWords) == 0 {
		return 0
	}

	tCodes := make([]string, len(tWords))
	for i, w := range tWords {
		tCodes[i] = SoundexCode(w)
	}

	sum := 0.0
	for _, qw := range qWords {
		qCode := SoundexCode(qw)
		best := 0.0
		for _, tc := range tCodes {
			if s := codeSimilarity(qCode, tc); s > best {
				best = s
			}
		}
		sum += best
	}

	avg := sum / float64(len(qWords))
	penalty := 1 - 0.1*math.Abs(float64(len(qWords)-len(tWords)))
	if penalty < 0.5 {
		penalty = 0.5
	}
	return avg * penalty
}
