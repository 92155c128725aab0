package phonetic

import "strings"

// RichCode computes a Metaphone-style fingerprint of word. It is more
// expressive than [SoundexCode]: consonants are kept as letters rather than
// collapsed into six digit groups, so it separates words that Soundex
// conflates.
//
// The encoding is a single left-to-right scan with one to two characters of
// lookahead:
//
//   - silent initial clusters kn, gn, pn, wr drop their first letter
//   - ph → f
//   - th → 0 (a distinct symbol, so "thin" and "tin" differ)
//   - ch → x after a vowel, k otherwise
//   - sh, tio, sia → x
//   - gh is silent before t
//   - vowels are retained only at the start of the word
//   - adjacent duplicate letters collapse to one
//
// RichCode is deterministic for any input and returns "" for input that
// contains no letters.
func RichCode(word string) string {
	letters := lettersOnly(word)
	if letters == "" {
		return ""
	}

	// Silent initial clusters.
	if len(letters) >= 2 {
		switch letters[:2] {
		case "kn", "gn", "pn", "wr":
			letters = letters[1:]
		}
	}

	var sb strings.Builder
	appendSym := func(c byte) {
		// Collapse adjacent duplicates.
		if sb.Len() > 0 && sb.String()[sb.Len()-1] == c {
			return
		}
		sb.WriteByte(c)
	}

	for i := 0; i < len(letters); {
		c := letters[i]

		// Three-character sequences first.
		if i+3 <= len(letters) {
			switch letters[i : i+3] {
			case "tio", "sia":
				appendSym('x')
				i += 3
				continue
			}
		}

		// Two-character digraphs.
		if i+2 <= len(letters) {
			switch letters[i : i+2] {
			case "ph":
				appendSym('f')
				i += 2
				continue
			case "th":
				appendSym('0')
				i += 2
				continue
			case "sh":
				appendSym('x')
				i += 2
				continue
			case "ch":
				if i > 0 && isVowel(letters[i-1]) {
					appendSym('x')
				} else {
					appendSym('k')
				}
				i += 2
				continue
			case "gh":
				// Silent before t ("light", "thought").
				if i+2 < len(letters) && letters[i+2] == 't' {
					i += 2
					continue
				}
			}
		}

		if isVowel(c) {
			if i == 0 {
				appendSym(c)
			}
			i++
			continue
		}

		appendSym(c)
		i++
	}

	return sb.String()
}

// isVowel reports whether c is an ASCII vowel.
func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
