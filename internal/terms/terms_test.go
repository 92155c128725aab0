package terms_test

import (
	"strings"
	"testing"

	"github.com/islamborghini/livecaps/internal/phonetic"
	"github.com/islamborghini/livecaps/internal/terms"
	"github.com/islamborghini/livecaps/pkg/types"
)

func TestSplitSentences(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "basic",
			text: "Hello world. This is Go. Done!",
			want: []string{"Hello world.", "This is Go.", "Done!"},
		},
		{
			name: "title abbreviation not a boundary",
			text: "Dr. Smith presented. The talk went well.",
			want: []string{"Dr. Smith presented.", "The talk went well."},
		},
		{
			name: "dotted acronym not a boundary",
			text: "The U.S.A. team arrived. Everyone cheered.",
			want: []string{"The U.S.A. team arrived.", "Everyone cheered."},
		},
		{
			name: "decimal number not a boundary",
			text: "Version 2.5 shipped today. It works.",
			want: []string{"Version 2.5 shipped today.", "It works."},
		},
		{
			name: "terminator run",
			text: "Really?! Yes.",
			want: []string{"Really?!", "Yes."},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := terms.SplitSentences(tc.text)
			if len(got) != len(tc.want) {
				t.Fatalf("SplitSentences(%q) = %q, want %q", tc.text, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestSplitSentences_Empty(t *testing.T) {
	t.Parallel()

	if got := terms.SplitSentences("   \n\t "); got != nil {
		t.Errorf("SplitSentences(whitespace) = %v, want nil", got)
	}
}

func TestIsAcronym(t *testing.T) {
	t.Parallel()

	for _, w := range []string{"API", "HTTP", "K8S", "U.S.A.", "GPT4"} {
		if !terms.IsAcronym(w) {
			t.Errorf("IsAcronym(%q) = false, want true", w)
		}
	}
	for _, w := range []string{"api", "Hello", "TOOLONGACRONYM", "a"} {
		if terms.IsAcronym(w) {
			t.Errorf("IsAcronym(%q) = true, want false", w)
		}
	}
}

func TestIsTechnical(t *testing.T) {
	t.Parallel()

	for _, w := range []string{"camelCase", "PascalCase", "snake_case", "kebab-case", "main.go", "utf8", "deadbeef00"} {
		if !terms.IsTechnical(w) {
			t.Errorf("IsTechnical(%q) = false, want true", w)
		}
	}
	for _, w := range []string{"hello", "World", "API"} {
		if terms.IsTechnical(w) {
			t.Errorf("IsTechnical(%q) = true, want false", w)
		}
	}
}

func TestIsProperNoun(t *testing.T) {
	t.Parallel()

	cases := []struct {
		word    string
		atStart bool
		want    bool
	}{
		{"Kubernetes", false, true},
		{"Alice", false, true},
		{"kubernetes", false, false},
		{"API", false, false}, // no lowercase letters
		{"The", true, false},  // capitalized stop word at sentence start
		{"Grafana", true, true},
	}
	for _, tc := range cases {
		if got := terms.IsProperNoun(tc.word, tc.atStart); got != tc.want {
			t.Errorf("IsProperNoun(%q, atStart=%v) = %v, want %v", tc.word, tc.atStart, got, tc.want)
		}
	}
}

func TestCategorize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		term    string
		context string
		heading bool
		want    types.TermCategory
	}{
		{"API", "", false, types.CategoryAcronym},
		{"snake_case", "", false, types.CategoryTechnical},
		{"Acme Inc", "", false, types.CategoryOrganization},
		{"Silicon Valley", "", false, types.CategoryLocation},
		{"Alice", "Alice said the deadline moved.", false, types.CategoryPerson},
		{"Grafana", "We deployed the Grafana platform last week.", false, types.CategoryProduct},
		{"Berlin", "The office is located in Berlin.", false, types.CategoryLocation},
		{"Whatever", "", true, types.CategoryHeading},
		{"widget", "plain text with no cues", false, types.CategoryGeneral},
	}
	for _, tc := range cases {
		if got := terms.Categorize(tc.term, tc.context, tc.heading); got != tc.want {
			t.Errorf("Categorize(%q, %q, %v) = %q, want %q", tc.term, tc.context, tc.heading, got, tc.want)
		}
	}
}

func TestExtractor_Extract_Empty(t *testing.T) {
	t.Parallel()

	e := terms.New()
	got := e.Extract("", "doc-1")
	if got == nil || len(got) != 0 {
		t.Errorf("Extract(empty) = %v, want empty non-nil slice", got)
	}
}

func TestExtractor_Extract_NoStopWords(t *testing.T) {
	t.Parallel()

	e := terms.New(terms.WithMinFrequency(1))
	got := e.Extract("The team and the manager reviewed the Kubernetes rollout with the vendor.", "doc-1")
	for _, rt := range got {
		if phonetic.IsStopWord(rt.NormalizedTerm) {
			t.Errorf("extracted stop word %q", rt.NormalizedTerm)
		}
	}
}

func TestExtractor_Extract_CoreFields(t *testing.T) {
	t.Parallel()

	e := terms.New(terms.WithMinFrequency(1))
	text := "Kubernetes handles the rollout. Kubernetes restarts failed pods automatically."
	got := e.Extract(text, "doc-42")

	var k8s *types.ReferenceTerm
	for i := range got {
		if got[i].NormalizedTerm == "kubernetes" {
			k8s = &got[i]
			break
		}
	}
	if k8s == nil {
		t.Fatalf("Extract did not return kubernetes; terms: %v", termNames(got))
	}
	if k8s.Frequency != 2 {
		t.Errorf("Frequency = %d, want 2", k8s.Frequency)
	}
	if k8s.SourceID != "doc-42" {
		t.Errorf("SourceID = %q, want doc-42", k8s.SourceID)
	}
	if want := phonetic.SoundexCode("kubernetes"); k8s.PhoneticCode != want {
		t.Errorf("PhoneticCode = %q, want %q", k8s.PhoneticCode, want)
	}
	if !strings.Contains(strings.ToLower(k8s.Context), "kubernetes") {
		t.Errorf("Context %q does not contain the term", k8s.Context)
	}
}

func TestExtractor_Extract_FrequencyThreshold(t *testing.T) {
	t.Parallel()

	e := terms.New() // default MinFrequency 2
	text := "the deployment failed once. the deployment failed again. a rollback happened."
	got := e.Extract(text, "doc-1")

	if !containsTerm(got, "deployment") {
		t.Errorf("deployment occurs twice, want it extracted; got %v", termNames(got))
	}
	if containsTerm(got, "rollback") {
		t.Errorf("rollback occurs once and is not structural, want it dropped; got %v", termNames(got))
	}
}

func TestExtractor_Extract_ProperNounPhrases(t *testing.T) {
	t.Parallel()

	e := terms.New()
	text := "We signed the contract with Bank of America yesterday. John Smith approved it."
	got := e.Extract(text, "doc-1")

	if !containsTerm(got, "bank of america") {
		t.Errorf("want phrase %q extracted; got %v", "Bank of America", termNames(got))
	}
	if !containsTerm(got, "john smith") {
		t.Errorf("want phrase %q extracted; got %v", "John Smith", termNames(got))
	}
}

func TestExtractor_Extract_Headings(t *testing.T) {
	t.Parallel()

	e := terms.New()
	text := "# Deployment Guide\n\nSome intro text here.\n\nSYSTEM REQUIREMENTS\n\n1. Getting Started\n\nMore body text follows."
	got := e.Extract(text, "doc-1")

	for _, want := range []string{"deployment guide", "system requirements", "getting started"} {
		var found *types.ReferenceTerm
		for i := range got {
			if got[i].NormalizedTerm == want {
				found = &got[i]
				break
			}
		}
		if found == nil {
			t.Errorf("heading %q not extracted; got %v", want, termNames(got))
			continue
		}
		if found.Category != types.CategoryHeading {
			t.Errorf("heading %q category = %q, want %q", want, found.Category, types.CategoryHeading)
		}
	}
}

func TestExtractor_Extract_Ranking(t *testing.T) {
	t.Parallel()

	e := terms.New(terms.WithMinFrequency(1))
	text := "Alice said the migration is ready. Alice said the rollout starts Monday. The migration tool is migration-tool."
	got := e.Extract(text, "doc-1")

	for i := 1; i < len(got); i++ {
		prev := float64(got[i-1].Frequency) * got[i-1].Category.Weight()
		cur := float64(got[i].Frequency) * got[i].Category.Weight()
		if cur > prev {
			t.Errorf("terms not ranked: %q (%.2f) after %q (%.2f)",
				got[i].NormalizedTerm, cur, got[i-1].NormalizedTerm, prev)
		}
	}
}

func TestExtractor_Extract_Deterministic(t *testing.T) {
	t.Parallel()

	e := terms.New()
	text := "Prometheus scrapes metrics. Prometheus alerts on thresholds. Grafana Cloud renders dashboards. Grafana Cloud is hosted."

	first := e.Extract(text, "doc-1")
	second := e.Extract(text, "doc-1")
	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].NormalizedTerm != second[i].NormalizedTerm {
			t.Errorf("order differs at %d: %q vs %q", i, first[i].NormalizedTerm, second[i].NormalizedTerm)
		}
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	a := []types.ReferenceTerm{
		{
			Term:           "Kubernetes",
			NormalizedTerm: "kubernetes",
			Context:        "Kubernetes handles rollouts.",
			SourceID:       "doc-1",
			PhoneticCode:   phonetic.SoundexCode("kubernetes"),
			Frequency:      2,
			Category:       types.CategoryGeneral,
		},
		{
			Term:           "Grafana",
			NormalizedTerm: "grafana",
			SourceID:       "doc-1",
			Frequency:      1,
			Category:       types.CategoryProduct,
		},
	}
	b := []types.ReferenceTerm{
		{
			Term:           "kubernetes",
			NormalizedTerm: "kubernetes",
			Context:        "We run kubernetes in production.",
			SourceID:       "doc-2",
			PhoneticCode:   phonetic.SoundexCode("kubernetes"),
			Frequency:      3,
			IsProperNoun:   true,
			Category:       types.CategoryProduct,
		},
	}

	merged := terms.Merge(a, b)
	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2", len(merged))
	}

	var k8s *types.ReferenceTerm
	for i := range merged {
		if merged[i].NormalizedTerm == "kubernetes" {
			k8s = &merged[i]
		}
	}
	if k8s == nil {
		t.Fatal("merged list missing kubernetes")
	}
	if k8s.Frequency != 5 {
		t.Errorf("merged Frequency = %d, want 5", k8s.Frequency)
	}
	if !k8s.IsProperNoun {
		t.Error("merged IsProperNoun = false, want true (OR of inputs)")
	}
	if k8s.Category != types.CategoryProduct {
		t.Errorf("merged Category = %q, want the higher-weight %q", k8s.Category, types.CategoryProduct)
	}
	if !strings.Contains(k8s.Context, "rollouts") || !strings.Contains(k8s.Context, "production") {
		t.Errorf("merged Context %q, want both source contexts retained", k8s.Context)
	}
}

func TestMerge_Empty(t *testing.T) {
	t.Parallel()

	if got := terms.Merge(); len(got) != 0 {
		t.Errorf("Merge() = %v, want empty", got)
	}
	if got := terms.Merge(nil, []types.ReferenceTerm{}); len(got) != 0 {
		t.Errorf("Merge(nil, empty) = %v, want empty", got)
	}
}

func containsTerm(list []types.ReferenceTerm, normalized string) bool {
	for _, rt := range list {
		if rt.NormalizedTerm == normalized {
			return true
		}
	}
	return false
}

func termNames(list []types.ReferenceTerm) []string {
	names := make([]string, len(list))
	for i, rt := range list {
		names[i] = rt.NormalizedTerm
	}
	return names
}
