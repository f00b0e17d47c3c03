package lexical

import (
	"math"
	"reflect"
	"testing"
)

// --- Tests ---

func TestRank_OrdersByCosineSimilarity(t *testing.T) {
	docs := []string{
		"a cyberpunk heist through cyberspace",
		"a desert planet epic about prophecy and spice",
		"a comedy of manners in the countryside",
	}

	scored := Rank("desert planet prophecy", docs, 10)
	if len(scored) != 3 {
		t.Fatalf("expected 3 results, got %d", len(scored))
	}
	if scored[0].Index != 1 {
		t.Errorf("expected desert doc ranked first, got index %d", scored[0].Index)
	}
	if scored[0].Score <= scored[1].Score {
		t.Errorf("scores not descending: %v", scored)
	}
}

func TestRank_Deterministic(t *testing.T) {
	docs := []string{"science fiction space opera", "romance novel", "space pirates"}

	first := Rank("space adventure", docs, 10)
	for i := 0; i < 5; i++ {
		if got := Rank("space adventure", docs, 10); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v vs %v", i, got, first)
		}
	}
}

func TestRank_TiesBreakByDocumentOrder(t *testing.T) {
	docs := []string{"dragons everywhere", "dragons everywhere", "dragons everywhere"}

	scored := Rank("dragons", docs, 10)
	for i, sc := range scored {
		if sc.Index != i {
			t.Errorf("tie at position %d broke order: got index %d", i, sc.Index)
		}
	}
}

func TestRank_TopKTruncates(t *testing.T) {
	docs := []string{"cats", "cats cats", "cats cats cats", "cats galore"}

	scored := Rank("cats", docs, 2)
	if len(scored) != 2 {
		t.Fatalf("expected 2 results, got %d", len(scored))
	}
}

func TestRank_ZeroTopKReturnsAll(t *testing.T) {
	docs := []string{"one fish", "two fish", "red fish"}

	scored := Rank("fish", docs, 0)
	if len(scored) != 3 {
		t.Fatalf("expected all 3 results, got %d", len(scored))
	}
}

func TestRank_EmptyDocuments(t *testing.T) {
	if got := Rank("anything", nil, 10); got != nil {
		t.Errorf("expected nil for empty documents, got %v", got)
	}
}

func TestRank_EmptyVocabulary(t *testing.T) {
	// Single-rune and punctuation tokens never enter the vocabulary.
	if got := Rank("! ?", []string{". . .", "- -"}, 10); got != nil {
		t.Errorf("expected nil for empty vocabulary, got %v", got)
	}
}

func TestRank_UnrelatedQueryScoresZero(t *testing.T) {
	docs := []string{"gardening tips for roses"}

	scored := Rank("quantum chromodynamics", docs, 10)
	if len(scored) != 1 {
		t.Fatalf("expected 1 result, got %d", len(scored))
	}
	if scored[0].Score != 0 {
		t.Errorf("expected zero score for disjoint vocabularies, got %v", scored[0].Score)
	}
}

func TestFitTransform_RowsAreL2Normalized(t *testing.T) {
	v := NewVectorizer()
	m := v.FitTransform([]string{"apple banana apple", "banana cherry"})

	for i, row := range m.Rows {
		var norm float64
		for _, w := range row {
			norm += w * w
		}
		if math.Abs(math.Sqrt(norm)-1) > 1e-9 {
			t.Errorf("row %d norm = %v, want 1", i, math.Sqrt(norm))
		}
	}
}

func TestFitTransform_VocabularySorted(t *testing.T) {
	v := NewVectorizer()
	m := v.FitTransform([]string{"zebra apple mango"})

	want := []string{"apple", "mango", "zebra"}
	if !reflect.DeepEqual(m.Terms, want) {
		t.Errorf("terms = %v, want %v", m.Terms, want)
	}
}

func TestFitTransform_Lowercases(t *testing.T) {
	v := NewVectorizer()
	m := v.FitTransform([]string{"Apple APPLE apple"})

	if len(m.Terms) != 1 || m.Terms[0] != "apple" {
		t.Errorf("expected single lowercased term, got %v", m.Terms)
	}
}

func TestFitTransform_StopWords(t *testing.T) {
	v := NewVectorizer(WithStopWords())
	m := v.FitTransform([]string{"the quick fox and the lazy dog"})

	for _, term := range m.Terms {
		if IsStopWord(term) {
			t.Errorf("stop word %q survived filtering", term)
		}
	}
	if len(m.Terms) == 0 {
		t.Error("expected content terms to remain")
	}
}

func TestFitTransform_MaxDocFreqDropsUbiquitousTerms(t *testing.T) {
	v := NewVectorizer(WithMaxDocFreq(0.85))
	texts := []string{
		"books about dragons",
		"books about romance",
		"books about history",
		"books about cooking",
	}
	m := v.FitTransform(texts)

	for _, term := range m.Terms {
		if term == "books" || term == "about" {
			t.Errorf("term %q appears in every document and should be dropped", term)
		}
	}
}

func TestFitTransform_NgramRange(t *testing.T) {
	v := NewVectorizer(WithNgramRange(1, 2))
	m := v.FitTransform([]string{"space opera classics"})

	has := func(term string) bool {
		for _, tm := range m.Terms {
			if tm == term {
				return true
			}
		}
		return false
	}
	if !has("space") || !has("space opera") || !has("opera classics") {
		t.Errorf("missing expected unigrams or bigrams: %v", m.Terms)
	}
}

func TestFitTransform_IDFWeightsRareTermsHigher(t *testing.T) {
	v := NewVectorizer()
	// "common" in both docs, "rare" only in the first, once each there.
	m := v.FitTransform([]string{"common rare", "common other"})

	idx := map[string]int{}
	for k, term := range m.Terms {
		idx[term] = k
	}
	row := m.Rows[0]
	if row[idx["rare"]] <= row[idx["common"]] {
		t.Errorf("rare term weight %v should exceed common term weight %v",
			row[idx["rare"]], row[idx["common"]])
	}
}

func TestTopTerms(t *testing.T) {
	v := NewVectorizer(WithStopWords())
	corpus := []string{
		"dragons dragons dragons and a castle",
		"a manual on sourdough baking",
		"a study of medieval castles",
	}

	terms := v.TopTerms(corpus, 3)
	if len(terms) == 0 || len(terms) > 3 {
		t.Fatalf("expected 1..3 terms, got %v", terms)
	}
	if terms[0] != "dragons" {
		t.Errorf("expected dominant term dragons, got %v", terms)
	}
}

func TestTopTerms_EmptyText(t *testing.T) {
	v := NewVectorizer()
	if terms := v.TopTerms([]string{"", "some corpus text"}, 3); len(terms) != 0 {
		t.Errorf("expected no terms for blank first text, got %v", terms)
	}
}

func TestIsWordToken(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"ab", true},
		{"book", true},
		{"42", true},
		{"a", false},
		{".", false},
		{"it's", false},
		{" ", false},
	}
	for _, c := range cases {
		if got := isWordToken(c.in); got != c.want {
			t.Errorf("isWordToken(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
