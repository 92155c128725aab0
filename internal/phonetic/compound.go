package phonetic

// minCompoundLen is the shortest word considered a possible run-together
// compound, and minPartLen the shortest useful fragment on either side of a
// split. Shorter fragments match half the dictionary and drown real hits.
const (
	minCompoundLen = 6
	minPartLen     = 3
)

// SplitCompoundWord generates the candidate segmentations of word used to
// recover run-together mishearings ("coopernetties" → "cooper netties").
//
// The original word is always the first variant. For words of at least six
// letters, every two-part split where both parts have at least three
// characters is appended, parts joined by a single space.
func SplitCompoundWord(word string) []string {
	variants := []string{word}
	if len(word) < minCompoundLen {
		return variants
	}
	for i := minPartLen; i <= len(word)-minPartLen; i++ {
		variants = append(variants, word[:i]+" "+word[i:])
	}
	return variants
}
