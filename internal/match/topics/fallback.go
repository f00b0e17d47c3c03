package topics

import (
	"context"

	"github.com/litswap/litswap/internal/match/lexical"
)

const fallbackTermCount = 3

// LexicalStrategy is the last-resort stage: a TF-IDF fit over the
// conversation plus the catalog documents, returning the conversation's
// highest-weighted terms. Requires no model, so it guarantees the cascade
// yields terms whenever the text contains any at all.
type LexicalStrategy struct{}

// NewLexicalStrategy creates the TF-IDF fallback stage.
func NewLexicalStrategy() *LexicalStrategy {
	return &LexicalStrategy{}
}

// Name implements Strategy.
func (s *LexicalStrategy) Name() string { return "tfidf" }

// Extract fits over {text} ∪ corpus and takes the three largest weights
// from the text's own row of the term matrix.
func (s *LexicalStrategy) Extract(_ context.Context, text string, corpus []string) ([]string, error) {
	texts := make([]string, 0, len(corpus)+1)
	texts = append(texts, text)
	texts = append(texts, corpus...)

	v := lexical.NewVectorizer(lexical.WithStopWords())
	return v.TopTerms(texts, fallbackTermCount), nil
}
