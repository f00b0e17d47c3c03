package index

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/litswap/litswap/internal/domain"
)

// --- Mocks ---

type mockEmbedder struct {
	calls int64
	err   error
}

// Embed maps each text to a deterministic vector keyed on its length.
func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	atomic.AddInt64(&m.calls, 1)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text)), 1}}, nil
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchCalls int64
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	atomic.AddInt64(&m.batchCalls, 1)
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func testBooks(t *testing.T) []domain.Book {
	t.Helper()
	mk := func(id int, title, desc string) domain.Book {
		b, err := domain.NewBook(id, title, desc, 10, "seller", nil)
		if err != nil {
			t.Fatalf("seed book: %v", err)
		}
		return b
	}
	return []domain.Book{
		mk(1, "Dune", "desert epic"),
		mk(2, "Emma", "a comedy of manners"),
		mk(3, "Neuromancer", "cyberpunk"),
	}
}

// --- Tests ---

func TestBuild_VectorsAlignWithBooks(t *testing.T) {
	books := testBooks(t)
	emb := &mockEmbedder{}

	idx, err := Build(context.Background(), emb, books, WithPoolSize(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if idx.Len() != 3 {
		t.Fatalf("expected 3 indexed books, got %d", idx.Len())
	}
	for i, b := range idx.Books() {
		want := []float32{float32(len(b.Description)), 1}
		if !reflect.DeepEqual(idx.Vectors()[i], want) {
			t.Errorf("vector %d = %v, want %v (misaligned)", i, idx.Vectors()[i], want)
		}
	}
	if got := atomic.LoadInt64(&emb.calls); got != 3 {
		t.Errorf("expected 3 embed calls, got %d", got)
	}
}

func TestBuild_PrefersBatchEmbedder(t *testing.T) {
	books := testBooks(t)
	emb := &mockBatchEmbedder{}

	idx, err := Build(context.Background(), emb, books)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("expected 3 indexed books, got %d", idx.Len())
	}
	if atomic.LoadInt64(&emb.batchCalls) != 1 {
		t.Errorf("expected a single batch call, got %d", emb.batchCalls)
	}
	if atomic.LoadInt64(&emb.calls) != 0 {
		t.Errorf("per-text path should not run, got %d calls", emb.calls)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	books := testBooks(t)

	first, err := Build(context.Background(), &mockEmbedder{}, books, WithPoolSize(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Build(context.Background(), &mockEmbedder{}, books, WithPoolSize(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first.Vectors(), second.Vectors()) {
		t.Error("rebuild from the same snapshot must produce identical vectors")
	}
}

func TestBuild_EmptyCatalog(t *testing.T) {
	idx, err := Build(context.Background(), &mockEmbedder{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("expected empty index, got %d", idx.Len())
	}
}

func TestBuild_EmbedderError(t *testing.T) {
	wantErr := errors.New("provider down")

	_, err := Build(context.Background(), &mockEmbedder{err: wantErr}, testBooks(t))
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped embedder error, got %v", err)
	}
}

func TestBuild_SnapshotIsolation(t *testing.T) {
	books := testBooks(t)

	idx, err := Build(context.Background(), &mockEmbedder{}, books)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	books[0].Title = "Mutated"
	if idx.Books()[0].Title != "Dune" {
		t.Error("index must not alias the caller's slice")
	}
}
