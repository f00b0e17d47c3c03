// Package index holds the precomputed embedding representation of a catalog
// snapshot: parallel arrays where vector i belongs to book i.
package index

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/litswap/litswap/internal/domain"
)

// Index is an immutable embedding index over a catalog snapshot. It is
// built once at startup; listings appended afterwards are not visible to
// semantic matching until an explicit rebuild. That staleness window is an
// accepted tradeoff, not a defect to hide.
type Index struct {
	books   []domain.Book
	vectors [][]float32
}

// Option configures an index build.
type Option func(*builder)

type builder struct {
	poolSize int
	logger   *zap.Logger
}

// WithPoolSize sets the worker count for per-description embedding when the
// provider lacks native batch support. Minimum 1.
func WithPoolSize(size int) Option {
	return func(b *builder) {
		if size >= 1 {
			b.poolSize = size
		}
	}
}

// WithLogger sets the build logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *builder) { b.logger = logger }
}

// Build embeds every book description and returns the index. The embedding
// function is deterministic given fixed input, so rebuilding from the same
// snapshot yields identical similarity rankings. Provider failures surface
// as a degraded-service error wrapped in domain.ErrEmbeddingProviderError
// semantics from the provider layer; the process is never crashed here.
func Build(ctx context.Context, embedder domain.Embedder, books []domain.Book, opts ...Option) (*Index, error) {
	b := &builder{poolSize: runtime.NumCPU(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}

	snapshot := make([]domain.Book, len(books))
	copy(snapshot, books)

	if len(snapshot) == 0 {
		return &Index{}, nil
	}

	texts := make([]string, len(snapshot))
	for i, book := range snapshot {
		texts[i] = book.Description
	}

	vectors, err := embedTexts(ctx, embedder, texts, b)
	if err != nil {
		return nil, err
	}

	b.logger.Info("embedding index built",
		zap.Int("books", len(snapshot)),
		zap.Int("dimensions", dims(vectors)),
	)
	return &Index{books: snapshot, vectors: vectors}, nil
}

// Books returns the indexed catalog snapshot.
func (ix *Index) Books() []domain.Book { return ix.books }

// Vectors returns the embedding for each indexed book, aligned with Books.
func (ix *Index) Vectors() [][]float32 { return ix.vectors }

// Len returns the number of indexed books.
func (ix *Index) Len() int { return len(ix.books) }

func embedTexts(ctx context.Context, embedder domain.Embedder, texts []string, b *builder) ([][]float32, error) {
	if be, ok := embedder.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("batch embed descriptions: %w", err)
		}
		if len(res.Embeddings) != len(texts) {
			return nil, fmt.Errorf("batch embed returned %d vectors for %d texts", len(res.Embeddings), len(texts))
		}
		return res.Embeddings, nil
	}

	pool, err := ants.NewPool(b.poolSize)
	if err != nil {
		return nil, fmt.Errorf("create embed pool: %w", err)
	}
	defer pool.Release()

	vectors := make([][]float32, len(texts))
	errs := make([]error, len(texts))
	var wg sync.WaitGroup

	for i, text := range texts {
		wg.Add(1)
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			res, embedErr := embedder.Embed(ctx, text)
			if embedErr != nil {
				errs[i] = fmt.Errorf("embed description [%d]: %w", i, embedErr)
				return
			}
			vectors[i] = res.Embedding
		}); submitErr != nil {
			wg.Done()
			return nil, fmt.Errorf("submit embed task: %w", submitErr)
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return vectors, nil
}

func dims(vectors [][]float32) int {
	if len(vectors) == 0 {
		return 0
	}
	return len(vectors[0])
}
