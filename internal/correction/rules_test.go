package correction

import (
	"strings"
	"testing"

	"github.com/islamborghini/livecaps/pkg/types"
)

func candidateFor(term string) types.CorrectionCandidate {
	return types.CorrectionCandidate{
		Term: types.ReferenceTerm{
			Term:           term,
			NormalizedTerm: strings.ToLower(term),
		},
		PhoneticScore: 0.9,
		CombinedScore: 0.45,
		MatchType:     types.MatchPhonetic,
	}
}

func TestReplaceWholeWord(t *testing.T) {
	t.Parallel()

	got, n := replaceWholeWord("we ship Redis and redis only", "redis", "Redis")
	if n != 2 {
		t.Errorf("replaceWholeWord() replaced %d occurrences, want 2", n)
	}
	if want := "we ship Redis and Redis only"; got != want {
		t.Errorf("replaceWholeWord() = %q, want %q", got, want)
	}
}

func TestReplaceWholeWord_DoesNotTouchSubstrings(t *testing.T) {
	t.Parallel()

	got, n := replaceWholeWord("cat concatenate cat", "cat", "dog")
	if n != 2 {
		t.Errorf("replaceWholeWord() replaced %d occurrences, want 2", n)
	}
	if want := "dog concatenate dog"; got != want {
		t.Errorf("replaceWholeWord() = %q, want %q", got, want)
	}
}

func TestReplaceOnce(t *testing.T) {
	t.Parallel()

	got := replaceOnce("say Cooper Netties twice: cooper netties", "cooper netties", "Kubernetes")
	if want := "say Kubernetes twice: cooper netties"; got != want {
		t.Errorf("replaceOnce() = %q, want %q", got, want)
	}
	if got := replaceOnce("nothing here", "absent", "x"); got != "nothing here" {
		t.Errorf("replaceOnce() modified text without a match: %q", got)
	}
}

func TestApplyRuleBased_SingleWord(t *testing.T) {
	t.Parallel()

	o := New(nil)
	low := []lowWord{
		{WordConfidence: types.WordConfidence{Word: "reddis", Confidence: 0.4}, Position: 2},
	}

	corrected, details := o.applyRuleBased(
		"we use reddis here",
		low,
		[]types.CorrectionCandidate{candidateFor("Redis")},
	)
	if want := "we use Redis here"; corrected != want {
		t.Fatalf("applyRuleBased() = %q, want %q", corrected, want)
	}
	if len(details) != 1 {
		t.Fatalf("applyRuleBased() produced %d details, want 1", len(details))
	}
	d := details[0]
	if d.Original != "reddis" || d.Corrected != "Redis" {
		t.Errorf("detail = %q -> %q, want reddis -> Redis", d.Original, d.Corrected)
	}
	if d.Position != 2 {
		t.Errorf("detail position = %d, want 2", d.Position)
	}
}

func TestApplyRuleBased_WindowCatchesSplitMishearing(t *testing.T) {
	t.Parallel()

	o := New(nil)
	low := []lowWord{
		{WordConfidence: types.WordConfidence{Word: "cooper", Confidence: 0.35}, Position: 3},
		{WordConfidence: types.WordConfidence{Word: "netties", Confidence: 0.28}, Position: 4},
	}

	corrected, details := o.applyRuleBased(
		"My presentation covers cooper netties",
		low,
		[]types.CorrectionCandidate{candidateFor("Kubernetes")},
	)
	if !strings.Contains(corrected, "Kubernetes") {
		t.Fatalf("applyRuleBased() = %q, want it to contain %q", corrected, "Kubernetes")
	}
	if strings.Contains(corrected, "cooper") {
		t.Errorf("applyRuleBased() = %q, mishearing still present", corrected)
	}
	if len(details) != 1 {
		t.Fatalf("applyRuleBased() produced %d details, want 1", len(details))
	}
	if details[0].Position != -1 {
		t.Errorf("window replacement position = %d, want -1", details[0].Position)
	}
	if details[0].Original != "cooper netties" {
		t.Errorf("window replacement original = %q, want %q", details[0].Original, "cooper netties")
	}
}

func TestApplyRuleBased_BelowThresholdLeavesTranscript(t *testing.T) {
	t.Parallel()

	o := New(nil)
	low := []lowWord{
		{WordConfidence: types.WordConfidence{Word: "zebra", Confidence: 0.3}, Position: 0},
	}

	corrected, details := o.applyRuleBased(
		"zebra crossing ahead",
		low,
		[]types.CorrectionCandidate{candidateFor("Kubernetes")},
	)
	if corrected != "zebra crossing ahead" {
		t.Errorf("applyRuleBased() = %q, want transcript unchanged", corrected)
	}
	if len(details) != 0 {
		t.Errorf("applyRuleBased() produced %d details, want 0", len(details))
	}
}

func TestApplyRuleBased_NoCandidates(t *testing.T) {
	t.Parallel()

	o := New(nil)
	low := []lowWord{
		{WordConfidence: types.WordConfidence{Word: "word", Confidence: 0.1}, Position: 0},
	}

	corrected, details := o.applyRuleBased("word salad", low, nil)
	if corrected != "word salad" || details != nil {
		t.Errorf("applyRuleBased() = %q, %v; want unchanged transcript and no details", corrected, details)
	}
}
