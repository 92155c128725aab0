package correction

import (
	"regexp"
	"strings"

	"github.com/islamborghini/livecaps/internal/phonetic"
	"github.com/islamborghini/livecaps/pkg/types"
)

// defaultRuleThreshold is the minimum best-match score a candidate pool term
// must reach before a rule-based replacement is applied.
const defaultRuleThreshold = 0.7

// slidingWindowSizes are the multi-word window lengths tried by the window
// pass, longest first so a three-word mishearing is not partially corrected
// by a two-word window.
var slidingWindowSizes = []int{3, 2}

// applyRuleBased corrects transcript deterministically against the candidate
// pool. Two passes run:
//
//  1. each low-confidence word is matched individually and replaced as a
//     whole word wherever it occurs
//  2. sliding windows of adjacent transcript words that contain at least one
//     low-confidence word are matched with compound-split expansion, so a
//     multi-word mishearing of a single term ("cooper netties") can be
//     replaced by that term
//
// It returns the corrected transcript and one detail per applied replacement.
func (o *Orchestrator) applyRuleBased(transcript string, low []lowWord, candidates []types.CorrectionCandidate) (string, []types.CorrectionDetail) {
	if transcript == "" || len(low) == 0 || len(candidates) == 0 {
		return transcript, nil
	}

	pool := make([]string, len(candidates))
	for i, c := range candidates {
		pool[i] = c.Term.Term
	}
	set := phonetic.PrepareTerms(pool)
	byLower := make(map[string]types.CorrectionCandidate, len(candidates))
	for _, c := range candidates {
		byLower[strings.ToLower(c.Term.Term)] = c
	}

	corrected := transcript
	var details []types.CorrectionDetail
	replaced := make(map[int]bool, len(low))

	// Pass 1: individual low-confidence words.
	for i, lw := range low {
		match, ok := o.matcher.FindBestMatchPrepared(lw.Word, set)
		if !ok || match.Score < o.ruleThreshold {
			continue
		}
		if strings.EqualFold(lw.Word, match.Term) {
			continue
		}
		next, n := replaceWholeWord(corrected, lw.Word, match.Term)
		if n == 0 {
			continue
		}
		corrected = next
		replaced[i] = true
		details = append(details, types.CorrectionDetail{
			Original:    lw.Word,
			Corrected:   match.Term,
			Reason:      "phonetic match to reference term",
			Confidence:  clamp01(match.Score),
			MatchedTerm: match.Term,
			MatchType:   matchTypeFor(byLower, match.Term),
			Position:    lw.Position,
		})
	}

	// Pass 2: windows of adjacent words spanning uncorrected low-confidence
	// positions.
	lowLeft := make(map[int]bool, len(low))
	for i, lw := range low {
		if !replaced[i] {
			lowLeft[lw.Position] = true
		}
	}
	if len(lowLeft) == 0 {
		return corrected, details
	}

	words := strings.Fields(transcript)
	for _, size := range slidingWindowSizes {
		for start := 0; start+size <= len(words); start++ {
			overlaps := false
			for p := start; p < start+size; p++ {
				if lowLeft[p] {
					overlaps = true
					break
				}
			}
			if !overlaps {
				continue
			}

			window := strings.Join(words[start:start+size], " ")
			match, ok := o.matcher.FindBestMatchPrepared(window, set)
			if !ok || match.Score < o.ruleThreshold {
				continue
			}
			if strings.EqualFold(window, match.Term) {
				continue
			}
			next := replaceOnce(corrected, window, match.Term)
			if next == corrected {
				continue
			}
			corrected = next
			for p := start; p < start+size; p++ {
				delete(lowLeft, p)
			}
			details = append(details, types.CorrectionDetail{
				Original:    window,
				Corrected:   match.Term,
				Reason:      "phonetic match to reference term",
				Confidence:  clamp01(match.Score),
				MatchedTerm: match.Term,
				MatchType:   matchTypeFor(byLower, match.Term),
				Position:    -1,
			})
		}
	}

	return corrected, details
}

// matchTypeFor resolves the match type recorded for a replacement, falling
// back to phonetic when the matched term left the candidate map (it never
// should).
func matchTypeFor(byLower map[string]types.CorrectionCandidate, term string) types.MatchType {
	if c, ok := byLower[strings.ToLower(term)]; ok {
		return c.MatchType
	}
	return types.MatchPhonetic
}

// replaceWholeWord replaces every whole-word, case-insensitive occurrence of
// word in text with repl. It returns the new text and the number of
// replacements; a word that fails to compile into a pattern is skipped.
func replaceWholeWord(text, word, repl string) (string, int) {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return text, 0
	}
	n := 0
	out := re.ReplaceAllStringFunc(text, func(string) string {
		n++
		return repl
	})
	return out, n
}

// replaceOnce replaces the first case-insensitive occurrence of phrase in
// text with repl, or returns text unchanged when phrase is absent.
func replaceOnce(text, phrase, repl string) string {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(phrase))
	if idx < 0 {
		return text
	}
	return text[:idx] + repl + text[idx+len(phrase):]
}
