// Package fuzzy resolves free-text title queries against catalog titles by
// approximate string matching.
package fuzzy

import (
	fuzzywuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// ResolveTitle returns the single best-matching catalog title and its
// confidence in [0, 100], using a weighted token-based edit-distance ratio.
// The resolver always reports its best candidate; treating low confidence
// as "no match" is the orchestrator's policy, which keeps the resolver
// independently testable against raw scores. An empty title set returns
// ("", 0).
func ResolveTitle(query string, titles []string) (string, int) {
	best := ""
	bestScore := 0
	for _, title := range titles {
		score := fuzzywuzzy.WRatio(query, title)
		if score > bestScore {
			best, bestScore = title, score
		}
	}
	return best, bestScore
}
