package topics

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/litswap/litswap/internal/domain"
	"github.com/litswap/litswap/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterMatchMetrics()
	m.Run()
}

// --- Mocks ---

type stubStrategy struct {
	name   string
	topics []string
	err    error
	calls  int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(_ context.Context, _ string, _ []string) ([]string, error) {
	s.calls++
	return s.topics, s.err
}

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	vec, ok := s.vectors[text]
	if !ok {
		vec = []float32{0, 0, 1}
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

// --- Tests ---

func TestExtractor_FirstHitWins(t *testing.T) {
	first := &stubStrategy{name: "first", topics: []string{"dragons"}}
	second := &stubStrategy{name: "second", topics: []string{"unused"}}
	e := NewExtractor(zap.NewNop(), first, second)

	got := e.Extract(context.Background(), "text", nil)
	if !reflect.DeepEqual(got, []string{"dragons"}) {
		t.Fatalf("unexpected topics: %v", got)
	}
	if second.calls != 0 {
		t.Error("second strategy should not run after a hit")
	}
}

func TestExtractor_EmptyFallsThrough(t *testing.T) {
	first := &stubStrategy{name: "first"}
	second := &stubStrategy{name: "second", topics: []string{"spice"}}
	e := NewExtractor(zap.NewNop(), first, second)

	got := e.Extract(context.Background(), "text", nil)
	if !reflect.DeepEqual(got, []string{"spice"}) {
		t.Fatalf("unexpected topics: %v", got)
	}
}

func TestExtractor_ErrorFallsThrough(t *testing.T) {
	first := &stubStrategy{name: "first", err: errors.New("model offline")}
	second := &stubStrategy{name: "second", topics: []string{"spice"}}
	e := NewExtractor(zap.NewNop(), first, second)

	got := e.Extract(context.Background(), "text", nil)
	if !reflect.DeepEqual(got, []string{"spice"}) {
		t.Fatalf("error should degrade to next stage, got %v", got)
	}
}

func TestExtractor_AllEmpty(t *testing.T) {
	e := NewExtractor(zap.NewNop(),
		&stubStrategy{name: "first"},
		&stubStrategy{name: "second"},
	)

	if got := e.Extract(context.Background(), "text", nil); got != nil {
		t.Fatalf("expected nil when no stage produces topics, got %v", got)
	}
}

func TestCandidatePhrases(t *testing.T) {
	got := candidatePhrases("I loved the desert planet saga")

	want := map[string]bool{
		"loved":         true,
		"desert":        true,
		"planet":        true,
		"saga":          true,
		"desert planet": true,
		"planet saga":   true,
	}
	for _, p := range got {
		if !want[p] {
			t.Errorf("unexpected candidate %q", p)
		}
		delete(want, p)
	}
	for p := range want {
		t.Errorf("missing candidate %q", p)
	}
}

func TestCandidatePhrases_StopWordBreaksBigrams(t *testing.T) {
	got := candidatePhrases("dragons of winter")

	for _, p := range got {
		if p == "dragons winter" || p == "dragons of" || p == "of winter" {
			t.Errorf("bigram %q spans a stop word", p)
		}
	}
}

func TestCandidatePhrases_Empty(t *testing.T) {
	if got := candidatePhrases("the of and a"); len(got) != 0 {
		t.Errorf("expected no candidates from stop words only, got %v", got)
	}
}

func TestKeyphraseStrategy_RanksBySimilarity(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"space pirates stole the cargo": {1, 0, 0},
		"space":                         {0.9, 0.1, 0},
		"pirates":                       {0.8, 0.2, 0},
		"space pirates":                 {1, 0, 0},
		"stole":                         {0, 1, 0},
		"cargo":                         {0, 0.5, 0.5},
		"stole cargo":                   {0, 0.9, 0.1},
	}}
	s := NewKeyphraseStrategy(emb)

	got, err := s.Extract(context.Background(), "space pirates stole the cargo", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 keyphrases, got %v", got)
	}
	if got[0] != "space pirates" {
		t.Errorf("expected most similar phrase first, got %v", got)
	}
}

func TestKeyphraseStrategy_EmbedderError(t *testing.T) {
	s := NewKeyphraseStrategy(&stubEmbedder{err: errors.New("quota")})

	_, err := s.Extract(context.Background(), "space pirates", nil)
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestKeyphraseStrategy_NoCandidates(t *testing.T) {
	s := NewKeyphraseStrategy(&stubEmbedder{})

	got, err := s.Extract(context.Background(), "a an the", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil without candidates, got %v", got)
	}
}

func TestLexicalStrategy(t *testing.T) {
	s := NewLexicalStrategy()
	corpus := []string{
		"a manual on sourdough baking",
		"a study of medieval castles",
	}

	got, err := s.Extract(context.Background(), "dragons dragons and castles", corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 || got[0] != "dragons" {
		t.Errorf("expected dragons as top term, got %v", got)
	}
}

func TestLexicalStrategy_BlankText(t *testing.T) {
	s := NewLexicalStrategy()

	got, err := s.Extract(context.Background(), "", []string{"corpus text"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no terms for blank text, got %v", got)
	}
}
