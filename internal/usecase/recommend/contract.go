package recommend

import (
	"context"

	"github.com/litswap/litswap/internal/domain"
)

// CatalogReader reads the live catalog snapshot. New listings appear here
// immediately, unlike in the embedding index.
type CatalogReader interface {
	Snapshot() []domain.Book
	GetByTitle(title string) (domain.Book, error)
}

// PeerReader reads the peer-profile snapshot.
type PeerReader interface {
	Snapshot() []domain.Peer
}

// EmbeddingIndex is the prebuilt semantic index over a catalog snapshot.
type EmbeddingIndex interface {
	Books() []domain.Book
	Vectors() [][]float32
	Len() int
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// TopicExtractor pulls salient terms out of freeform conversation text.
// An empty result means "no topics detected", never a failure.
type TopicExtractor interface {
	Extract(ctx context.Context, text string, corpus []string) []string
}
