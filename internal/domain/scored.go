package domain

// Scored pairs a document position in the ranked corpus with its similarity
// score. Index refers to the caller's document ordering, not a book ID.
type Scored struct {
	Index int
	Score float64
}
