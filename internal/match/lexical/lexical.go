package lexical

import (
	"sort"

	"github.com/litswap/litswap/internal/domain"
)

// Rank fits a TF-IDF vectorizer over {query} ∪ documents (query is row 0 of
// the fit corpus), scores every document by cosine similarity to the query,
// and returns the topK highest-scoring documents in descending order. Ties
// break by original document order. An empty vocabulary returns nil rather
// than an error; rejecting blank queries is the caller's policy.
func Rank(query string, documents []string, topK int, opts ...Option) []domain.Scored {
	if len(documents) == 0 {
		return nil
	}

	corpus := make([]string, 0, len(documents)+1)
	corpus = append(corpus, query)
	corpus = append(corpus, documents...)

	m := NewVectorizer(opts...).FitTransform(corpus)
	if len(m.Terms) == 0 {
		return nil
	}

	scored := make([]domain.Scored, len(documents))
	for i := range documents {
		scored[i] = domain.Scored{Index: i, Score: m.Cosine(0, i+1)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
