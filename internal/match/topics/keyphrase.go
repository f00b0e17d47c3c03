package topics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"

	"github.com/litswap/litswap/internal/domain"
	"github.com/litswap/litswap/internal/match/lexical"
	"github.com/litswap/litswap/internal/match/semantic"
)

const defaultKeyphraseCount = 3

// KeyphraseStrategy ranks candidate 1-2-word phrases by embedding similarity
// to the whole text, recovering thematic intent when no named entity exists.
type KeyphraseStrategy struct {
	embedder domain.Embedder
	topN     int
}

// NewKeyphraseStrategy creates the embedding-aware keyphrase stage.
func NewKeyphraseStrategy(embedder domain.Embedder) *KeyphraseStrategy {
	return &KeyphraseStrategy{embedder: embedder, topN: defaultKeyphraseCount}
}

// Name implements Strategy.
func (s *KeyphraseStrategy) Name() string { return "keyphrases" }

// Extract embeds the text and every candidate phrase, then returns the topN
// candidates most similar to the text itself.
func (s *KeyphraseStrategy) Extract(ctx context.Context, text string, _ []string) ([]string, error) {
	candidates := candidatePhrases(text)
	if len(candidates) == 0 {
		return nil, nil
	}

	docRes, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed text: %w", domain.ErrExtractionFailed, err)
	}

	phraseVecs, err := embedAll(ctx, s.embedder, candidates)
	if err != nil {
		return nil, fmt.Errorf("%w: embed candidates: %w", domain.ErrExtractionFailed, err)
	}

	type ranked struct {
		phrase string
		score  float64
	}
	scored := make([]ranked, len(candidates))
	for i, phrase := range candidates {
		scored[i] = ranked{phrase: phrase, score: semantic.Cosine(docRes.Embedding, phraseVecs[i])}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	n := s.topN
	if len(scored) < n {
		n = len(scored)
	}
	phrases := make([]string, n)
	for i := 0; i < n; i++ {
		phrases[i] = scored[i].phrase
	}
	return phrases, nil
}

func embedAll(ctx context.Context, e domain.Embedder, texts []string) ([][]float32, error) {
	if be, ok := e.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, err
		}
		return res.Embeddings, nil
	}
	res, err := domain.BatchFallback(ctx, e, texts)
	if err != nil {
		return nil, err
	}
	return res.Embeddings, nil
}

// candidatePhrases generates deduplicated unigram and bigram candidates
// with English stop words removed, preserving order of first appearance.
// Bigrams only span adjacent tokens; a stop word breaks the phrase window.
func candidatePhrases(text string) []string {
	var runs [][]string
	var current []string

	toks := words.FromString(strings.ToLower(text))
	for toks.Next() {
		t := toks.Value()
		if !isPhraseToken(t) || lexical.IsStopWord(t) {
			if len(current) > 0 {
				runs = append(runs, current)
				current = nil
			}
			continue
		}
		current = append(current, t)
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}

	seen := make(map[string]struct{})
	var phrases []string
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			phrases = append(phrases, p)
		}
	}
	for _, run := range runs {
		for i, tok := range run {
			add(tok)
			if i+1 < len(run) {
				add(tok + " " + run[i+1])
			}
		}
	}
	return phrases
}

func isPhraseToken(t string) bool {
	n := 0
	for _, r := range t {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
		n++
	}
	return n >= 2
}
