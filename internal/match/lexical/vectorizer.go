// Package lexical implements TF-IDF vectorization and cosine ranking of a
// query against a document collection. Vectorizers are fitted per call: the
// vocabulary depends on the query text itself, so nothing is persisted
// between invocations.
package lexical

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// Vectorizer converts a text corpus into an L2-normalized TF-IDF matrix.
// The zero value is not usable; construct with NewVectorizer.
type Vectorizer struct {
	lowercase  bool
	stopWords  bool
	ngramMin   int
	ngramMax   int
	maxDocFreq float64
}

// Option configures a Vectorizer.
type Option func(*Vectorizer)

// WithStopWords removes English stop words before n-gram generation.
func WithStopWords() Option {
	return func(v *Vectorizer) { v.stopWords = true }
}

// WithNgramRange sets the n-gram sizes to extract, e.g. (1, 2) for unigrams
// and bigrams.
func WithNgramRange(minN, maxN int) Option {
	return func(v *Vectorizer) {
		if minN >= 1 && maxN >= minN {
			v.ngramMin, v.ngramMax = minN, maxN
		}
	}
}

// WithMaxDocFreq drops terms appearing in more than the given fraction of
// documents (corpus-specific stop words).
func WithMaxDocFreq(ratio float64) Option {
	return func(v *Vectorizer) {
		if ratio > 0 && ratio < 1 {
			v.maxDocFreq = ratio
		}
	}
}

// NewVectorizer creates a vectorizer. Defaults: lowercasing on, no stop-word
// removal, unigrams only, no document-frequency cutoff.
func NewVectorizer(opts ...Option) *Vectorizer {
	v := &Vectorizer{lowercase: true, ngramMin: 1, ngramMax: 1}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Matrix is a row-major TF-IDF matrix over the fitted vocabulary.
// Rows are L2-normalized, so the cosine of two rows is their dot product.
type Matrix struct {
	Rows  [][]float64
	Terms []string
}

// Cosine returns the cosine similarity between rows i and j.
func (m Matrix) Cosine(i, j int) float64 {
	var dot float64
	for k, a := range m.Rows[i] {
		dot += a * m.Rows[j][k]
	}
	return dot
}

// FitTransform fits the vocabulary over texts and returns their TF-IDF
// matrix, one row per text in input order. An empty vocabulary (all texts
// blank or stop words only) yields a Matrix with no terms.
func (v *Vectorizer) FitTransform(texts []string) Matrix {
	counts := make([]map[string]int, len(texts))
	docFreq := make(map[string]int)

	for i, text := range texts {
		counts[i] = v.termCounts(text)
		for term := range counts[i] {
			docFreq[term]++
		}
	}

	maxDF := len(texts)
	if v.maxDocFreq > 0 {
		maxDF = int(v.maxDocFreq * float64(len(texts)))
	}

	terms := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df <= maxDF {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)

	if len(terms) == 0 {
		return Matrix{Rows: make([][]float64, len(texts))}
	}

	// Smoothed IDF: ln((1+n)/(1+df)) + 1.
	n := float64(len(texts))
	idf := make([]float64, len(terms))
	for k, term := range terms {
		idf[k] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	rows := make([][]float64, len(texts))
	for i := range texts {
		row := make([]float64, len(terms))
		var norm float64
		for k, term := range terms {
			if c := counts[i][term]; c > 0 {
				w := float64(c) * idf[k]
				row[k] = w
				norm += w * w
			}
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for k := range row {
				row[k] /= norm
			}
		}
		rows[i] = row
	}

	return Matrix{Rows: rows, Terms: terms}
}

// TopTerms fits over texts and returns the n highest-weighted vocabulary
// terms of texts[0], descending by weight. Zero-weight terms are skipped.
func (v *Vectorizer) TopTerms(texts []string, n int) []string {
	m := v.FitTransform(texts)
	if len(m.Terms) == 0 || len(m.Rows) == 0 {
		return nil
	}

	type weighted struct {
		term   string
		weight float64
	}
	var candidates []weighted
	for k, w := range m.Rows[0] {
		if w > 0 {
			candidates = append(candidates, weighted{term: m.Terms[k], weight: w})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].weight > candidates[j].weight
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	terms := make([]string, len(candidates))
	for i, c := range candidates {
		terms[i] = c.term
	}
	return terms
}

// termCounts tokenizes a text and counts its n-gram occurrences.
func (v *Vectorizer) termCounts(text string) map[string]int {
	tokens := v.tokens(text)
	counts := make(map[string]int)
	for n := v.ngramMin; n <= v.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			counts[strings.Join(tokens[i:i+n], " ")]++
		}
	}
	return counts
}

func (v *Vectorizer) tokens(text string) []string {
	if v.lowercase {
		text = strings.ToLower(text)
	}
	var tokens []string
	toks := words.FromString(text)
	for toks.Next() {
		t := toks.Value()
		if !isWordToken(t) {
			continue
		}
		if v.stopWords && IsStopWord(t) {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// isWordToken keeps alphanumeric tokens of two or more runes, dropping the
// punctuation and whitespace segments the word iterator also emits.
func isWordToken(t string) bool {
	runes := 0
	for _, r := range t {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
		runes++
	}
	return runes >= 2
}
