package semantic

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/litswap/litswap/internal/domain"
)

// --- Mocks ---

type mockEmbedder struct {
	vector []float32
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vector}, nil
}

// --- Tests ---

func TestRank_OrdersByCosine(t *testing.T) {
	emb := &mockEmbedder{vector: []float32{1, 0}}
	vectors := [][]float32{
		{0, 1},       // orthogonal
		{1, 0},       // identical
		{0.7, 0.7},   // diagonal
	}

	scored, err := Rank(context.Background(), emb, "query", vectors, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scored) != 3 {
		t.Fatalf("expected 3 results, got %d", len(scored))
	}
	if scored[0].Index != 1 || scored[1].Index != 2 || scored[2].Index != 0 {
		t.Errorf("unexpected order: %v", scored)
	}
	if math.Abs(scored[0].Score-1) > 1e-6 {
		t.Errorf("identical vector should score 1, got %v", scored[0].Score)
	}
}

func TestRank_TopKTruncates(t *testing.T) {
	emb := &mockEmbedder{vector: []float32{1, 0}}
	vectors := [][]float32{{1, 0}, {0.9, 0.1}, {0.8, 0.2}, {0, 1}}

	scored, err := Rank(context.Background(), emb, "query", vectors, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scored) != 2 {
		t.Fatalf("expected 2 results, got %d", len(scored))
	}
}

func TestRank_EmptyVectors(t *testing.T) {
	emb := &mockEmbedder{vector: []float32{1}}

	scored, err := Rank(context.Background(), emb, "query", nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scored != nil {
		t.Errorf("expected nil result, got %v", scored)
	}
}

func TestRank_EmbedderError(t *testing.T) {
	wantErr := errors.New("provider down")
	emb := &mockEmbedder{err: wantErr}

	_, err := Rank(context.Background(), emb, "query", [][]float32{{1}}, 10)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped embedder error, got %v", err)
	}
}

func TestCosine(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Cosine(c.a, c.b); math.Abs(got-c.want) > 1e-6 {
				t.Errorf("Cosine(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestCosine_MismatchedLengths(t *testing.T) {
	// Compared over the shorter prefix.
	got := Cosine([]float32{1, 0}, []float32{1, 0, 5, 5})
	if math.Abs(got-1) > 1e-6 {
		t.Errorf("expected prefix comparison to score 1, got %v", got)
	}
}
