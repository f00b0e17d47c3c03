// Package semantic ranks indexed items by dense-embedding cosine similarity
// to a query text.
package semantic

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/litswap/litswap/internal/domain"
)

// Rank embeds the query text and scores it against every indexed vector,
// returning the topK highest-scoring positions in descending order. The
// query is typically a space-joined list of extracted topics. An empty
// vector set returns an empty result, not an error.
func Rank(
	ctx context.Context, embedder domain.Embedder, query string, vectors [][]float32, topK int,
) ([]domain.Scored, error) {
	if len(vectors) == 0 {
		return nil, nil
	}

	res, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored := make([]domain.Scored, len(vectors))
	for i, vec := range vectors {
		scored[i] = domain.Scored{Index: i, Score: Cosine(res.Embedding, vec)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// Cosine returns the cosine similarity of two vectors. Mismatched lengths
// are compared over the shorter prefix; a zero vector scores 0.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
