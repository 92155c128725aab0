// Package types defines the shared data model used across all livecaps packages.
//
// These types form the lingua franca between the term extractor, the correction
// orchestrator, the corpus stores, and the providers. Cross-cutting data
// structures live here to avoid circular imports; each package defines its own
// internal types on top of them.
package types

// TermCategory classifies a reference term extracted from a source document.
type TermCategory string

const (
	// CategoryPerson is a personal name (e.g., "Ada Lovelace").
	CategoryPerson TermCategory = "person"

	// CategoryOrganization is a company, institution, or team name.
	CategoryOrganization TermCategory = "organization"

	// CategoryLocation is a geographic or venue name.
	CategoryLocation TermCategory = "location"

	// CategoryProduct is a product, service, or project name.
	CategoryProduct TermCategory = "product"

	// CategoryTechnical is a technical identifier: camelCase, snake_case,
	// file names, hex-looking tokens, letter+digit mixes.
	CategoryTechnical TermCategory = "technical"

	// CategoryAcronym is an all-caps or dotted abbreviation (e.g., "HTTP", "U.S.A.").
	CategoryAcronym TermCategory = "acronym"

	// CategoryHeading is a term lifted from a document heading line.
	CategoryHeading TermCategory = "heading"

	// CategoryGeneral is the fallback category for frequent ordinary words.
	CategoryGeneral TermCategory = "general"
)

// IsValid reports whether c is a recognised term category.
func (c TermCategory) IsValid() bool {
	switch c {
	case CategoryPerson, CategoryOrganization, CategoryLocation, CategoryProduct,
		CategoryTechnical, CategoryAcronym, CategoryHeading, CategoryGeneral:
		return true
	}
	return false
}

// Weight returns the ranking weight of the category. Terms are ranked by
// frequency × weight, so categories that are more likely to be misheard by an
// STT engine (proper nouns) rank above generic vocabulary.
func (c TermCategory) Weight() float64 {
	switch c {
	case CategoryPerson:
		return 3.0
	case CategoryOrganization:
		return 2.5
	case CategoryProduct:
		return 2.2
	case CategoryLocation:
		return 2.0
	case CategoryAcronym:
		return 1.8
	case CategoryTechnical:
		return 1.6
	case CategoryHeading:
		return 1.4
	default:
		return 1.0
	}
}

// ReferenceTerm is a single corpus entry produced by the term extractor.
// Once produced a ReferenceTerm is immutable; merging across documents creates
// new values (frequencies summed, the higher-priority category kept).
type ReferenceTerm struct {
	// Term is the surface form exactly as it appeared in the source text.
	Term string `json:"term"`

	// NormalizedTerm is the lowercase lookup key. It is unique within a single
	// corpus snapshot.
	NormalizedTerm string `json:"normalizedTerm"`

	// Context is a short snippet of surrounding source text, used to ground
	// generative correction prompts.
	Context string `json:"context,omitempty"`

	// SourceID identifies the document the term was extracted from.
	SourceID string `json:"sourceId"`

	// PhoneticCode is the sound-alike fingerprint computed at extraction time.
	PhoneticCode string `json:"phoneticCode"`

	// Frequency is the number of occurrences across the term's sources (>= 1).
	Frequency int `json:"frequency"`

	// IsProperNoun reports whether the term was classified as a proper noun.
	IsProperNoun bool `json:"isProperNoun"`

	// Category is the classification assigned by the extractor.
	Category TermCategory `json:"category"`
}

// WordConfidence is the per-word confidence report from an upstream speech
// recogniser. Values are read-only input; position is implied by slice order.
type WordConfidence struct {
	// Word is the recognised word exactly as transcribed.
	Word string `json:"word"`

	// Confidence is the recogniser-reported confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Start is the word's start offset in seconds from utterance start.
	Start float64 `json:"start"`

	// End is the word's end offset in seconds from utterance start.
	End float64 `json:"end"`
}

// MatchType describes how a correction candidate or applied correction was found.
type MatchType string

const (
	// MatchPhonetic means the match came from sound-alike fingerprint scoring.
	MatchPhonetic MatchType = "phonetic"

	// MatchSemantic means the match came from embedding nearest-neighbour search.
	MatchSemantic MatchType = "semantic"

	// MatchLLM means the substitution was proposed by the generative corrector.
	MatchLLM MatchType = "llm"
)

// CorrectionCandidate pairs a corpus term with the similarity scores that
// proposed it for the current request. Candidates are ephemeral — built per
// request and discarded after the correction pass.
type CorrectionCandidate struct {
	// Term is the corpus entry proposed as a correction.
	Term ReferenceTerm `json:"term"`

	// SemanticScore is the embedding similarity in [0, 1]. Zero when the
	// candidate was found phonetically only.
	SemanticScore float64 `json:"semanticScore"`

	// PhoneticScore is the sound-alike similarity. Exact matches may carry a
	// bounded boost above 1.0 (capped at 1.2).
	PhoneticScore float64 `json:"phoneticScore"`

	// CombinedScore is the score used for final ranking: a weighted blend
	// when both retrieval strategies ran, otherwise the single strategy's
	// score unchanged.
	CombinedScore float64 `json:"combinedScore"`

	// MatchType records which retrieval path won: phonetic or semantic.
	MatchType MatchType `json:"matchType"`
}

// CorrectionDetail records one applied substitution, for auditing and display.
type CorrectionDetail struct {
	// Original is the transcript span that was replaced.
	Original string `json:"original"`

	// Corrected is the replacement text.
	Corrected string `json:"corrected"`

	// Reason is a short human-readable explanation of the substitution.
	Reason string `json:"reason"`

	// Confidence is the pipeline's confidence in this substitution.
	Confidence float64 `json:"confidence"`

	// MatchedTerm is the corpus surface form that drove the substitution,
	// when one exists.
	MatchedTerm string `json:"matchedTerm,omitempty"`

	// MatchType records which correction path produced this substitution.
	MatchType MatchType `json:"matchType"`

	// Position is the zero-based word position of the original span in the
	// transcript, or -1 when the span was located by window scan only.
	Position int `json:"position"`
}

// CorrectionRequest is the external input contract for one correction call.
type CorrectionRequest struct {
	// Transcript is the raw transcript text to correct.
	Transcript string `json:"transcript"`

	// WordConfidences carries per-word recogniser confidence, in transcript order.
	WordConfidences []WordConfidence `json:"wordConfidences"`

	// SessionID selects the reference corpus to correct against.
	SessionID string `json:"sessionId"`

	// Language is the BCP-47 language tag of the transcript (e.g., "en-US").
	Language string `json:"language"`

	// IsFinal indicates whether this is a final (authoritative) transcript
	// rather than a partial hypothesis.
	IsFinal bool `json:"isFinal"`

	// ConfidenceThreshold overrides the configured low-confidence cutoff for
	// this request. Zero means use the orchestrator default.
	ConfidenceThreshold float64 `json:"confidenceThreshold,omitempty"`
}

// CorrectionResult is the terminal value returned for every correction
// request. It is never mutated after being returned; correction is strictly
// additive, so the original transcript is always present as a safe baseline.
type CorrectionResult struct {
	// OriginalTranscript is the input transcript, always echoed back.
	OriginalTranscript string `json:"originalTranscript"`

	// CorrectedTranscript is the transcript with all substitutions applied.
	// Identical to OriginalTranscript when WasModified is false.
	CorrectedTranscript string `json:"correctedTranscript"`

	// WasModified reports whether at least one correction was applied.
	WasModified bool `json:"wasModified"`

	// Corrections itemises every applied substitution in order.
	Corrections []CorrectionDetail `json:"corrections"`

	// TermsRetrieved is the number of candidate terms gathered for this request.
	TermsRetrieved int `json:"termsRetrieved"`

	// ProcessingTimeMs is the wall-clock processing time in milliseconds.
	ProcessingTimeMs int64 `json:"processingTimeMs"`

	// SessionID echoes the request session.
	SessionID string `json:"sessionId"`

	// Warnings lists soft failures encountered on the way (fallbacks fired,
	// queries dropped). Empty on a clean run.
	Warnings []string `json:"warnings,omitempty"`
}

// Message represents a single message in a generative-model conversation.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the text content of the message.
	Content string
}
