package phonetic

import "strings"

// soundexDigit maps a consonant to its Soundex group digit, or 0 when the
// letter carries no digit (vowels, h, w, y).
func soundexDigit(c byte) byte {
	switch c {
	case 'b', 'f', 'p', 'v':
		return '1'
	case 'c', 'g', 'j', 'k', 'q', 's', 'x', 'z':
		return '2'
	case 'd', 't':
		return '3'
	case 'l':
		return '4'
	case 'm', 'n':
		return '5'
	case 'r':
		return '6'
	}
	return 0
}

// SoundexCode computes the classic Soundex fingerprint of word.
//
// Non-letter characters are stripped and the input is lowercased before
// encoding. The first letter is retained verbatim, subsequent consonants are
// collapsed into their group digits, vowels and duplicate adjacent digits are
// dropped, and the result is padded or truncated to exactly four symbols.
//
// SoundexCode is deterministic for any input and returns "" for input that
// contains no letters.
func SoundexCode(word string) string {
	letters := lettersOnly(word)
	if letters == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteByte(letters[0])

	prev := soundexDigit(letters[0])
	for i := 1; i < len(letters) && sb.Len() < 4; i++ {
		c := letters[i]

		// h and w are transparent: they neither emit a digit nor break a
		// run of same-group consonants.
		if c == 'h' || c == 'w' {
			continue
		}

		d := soundexDigit(c)
		if d == 0 {
			// Vowel: emits nothing but separates consonant groups.
			prev = 0
			continue
		}
		if d != prev {
			sb.WriteByte(d)
		}
		prev = d
	}

	for sb.Len() < 4 {
		sb.WriteByte('0')
	}
	return sb.String()
}

// lettersOnly lowercases word and strips every non-ASCII-letter character.
func lettersOnly(word string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(word) {
		if r >= 'a' && r <= 'z' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
