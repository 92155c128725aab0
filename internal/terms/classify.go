package terms

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/islamborghini/livecaps/internal/phonetic"
	"github.com/islamborghini/livecaps/pkg/types"
)

var (
	allCapsRe      = regexp.MustCompile(`^[A-Z]{2,6}$`)
	capsDigitsRe   = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,7}$`)
	camelCaseRe    = regexp.MustCompile(`^[a-z]+[A-Z]\w*$`)
	pascalMixRe    = regexp.MustCompile(`^[A-Z][a-z]+[A-Z]\w*$`)
	snakeKebabRe   = regexp.MustCompile(`^\w+[-_]\w+`)
	letterDigitRe  = regexp.MustCompile(`[A-Za-z]\d|\d[A-Za-z]`)
	fileExtRe      = regexp.MustCompile(`\.[a-z0-9]{1,4}$`)
	hexTokenRe     = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{6,}$`)
	digitOrMixedRe = regexp.MustCompile(`\d`)
)

// IsAcronym reports whether word looks like an abbreviation: 2–6 all-caps
// letters, a caps+digits mix, or two or more dotted single-letter groups.
func IsAcronym(word string) bool {
	if allCapsRe.MatchString(word) {
		return true
	}
	if capsDigitsRe.MatchString(word) && digitOrMixedRe.MatchString(word) {
		return true
	}
	return dottedSeqRe.MatchString(word) && strings.Contains(word, ".")
}

// IsTechnical reports whether word looks like a technical identifier:
// camelCase or PascalCase with an interior capital, snake_case or kebab-case,
// a letter+digit mix, a file-extension suffix, or a hex-looking token.
func IsTechnical(word string) bool {
	if IsAcronym(word) {
		return false
	}
	switch {
	case camelCaseRe.MatchString(word),
		pascalMixRe.MatchString(word),
		snakeKebabRe.MatchString(word),
		hexTokenRe.MatchString(word),
		fileExtRe.MatchString(strings.ToLower(word)),
		letterDigitRe.MatchString(word):
		return true
	}
	return false
}

// IsProperNoun reports whether word is written as a proper noun: a leading
// uppercase letter plus at least one lowercase letter. Sentence-start words
// are held to a stricter standard — they must be longer than one character
// and must not be stop words, since every sentence opener is capitalised.
func IsProperNoun(word string, atSentenceStart bool) bool {
	runes := []rune(word)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}
	hasLower := false
	for _, r := range runes[1:] {
		if unicode.IsLower(r) {
			hasLower = true
			break
		}
	}
	if !hasLower {
		return false
	}
	if atSentenceStart {
		if len(runes) <= 1 || phonetic.IsStopWord(word) {
			return false
		}
	}
	return true
}

// Contextual cue words per category, matched against the lowercase context.
var (
	personCues = []string{
		"said", "says", "told", "asked", "spoke", "met with", "according to",
		"mr.", "mrs.", "ms.", "dr.", "professor", "ceo", "cto", "founder",
		"director", "engineer", "author", "speaker", "presented by",
	}
	organizationCues = []string{
		"company", "corporation", "organization", "organisation", "startup",
		"firm", "agency", "team at", "works at", "joined", "acquired",
		"founded", "partnership with",
	}
	organizationSuffixes = []string{
		"Inc", "Inc.", "LLC", "Corp", "Corp.", "Ltd", "Ltd.", "Company",
		"Group", "Labs", "Technologies", "Systems", "University", "Institute",
		"Foundation",
	}
	locationCues = []string{
		"located in", "based in", "city of", "country", "region", "visited",
		"traveled to", "travelled to", "north of", "south of", "east of",
		"west of", "headquarters in", "office in",
	}
	locationSuffixes = []string{
		"City", "Island", "Valley", "Bay", "Mountain", "River", "Street",
		"Avenue", "County",
	}
	productCues = []string{
		"product", "platform", "framework", "library", "app", "application",
		"software", "tool", "service", "version", "release", "launched",
		"deployed", "built with", "powered by", "using",
	}
)

// Categorize assigns a term category. Heading-sourced terms are always
// [types.CategoryHeading]; structural checks (acronym, technical) come next;
// otherwise contextual cue words and name suffixes decide between person,
// organization, location, and product, falling back to general.
func Categorize(term, context string, fromHeading bool) types.TermCategory {
	if fromHeading {
		return types.CategoryHeading
	}
	if IsAcronym(term) {
		return types.CategoryAcronym
	}
	if IsTechnical(term) {
		return types.CategoryTechnical
	}

	if hasAnySuffix(term, organizationSuffixes) {
		return types.CategoryOrganization
	}
	if hasAnySuffix(term, locationSuffixes) {
		return types.CategoryLocation
	}

	lctx := strings.ToLower(context)
	switch {
	case containsAny(lctx, personCues):
		return types.CategoryPerson
	case containsAny(lctx, organizationCues):
		return types.CategoryOrganization
	case containsAny(lctx, locationCues):
		return types.CategoryLocation
	case containsAny(lctx, productCues):
		return types.CategoryProduct
	}
	return types.CategoryGeneral
}

// hasAnySuffix reports whether term ends with any of the given suffix words
// ("Acme Inc", "Silicon Valley"). The suffix must be a separate trailing word.
func hasAnySuffix(term string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(term, " "+s) {
			return true
		}
	}
	return false
}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
