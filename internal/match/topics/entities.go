package topics

import (
	"context"
	"fmt"

	"github.com/jdkato/prose/v2"

	"github.com/litswap/litswap/internal/domain"
)

// EntityStrategy extracts named entities (people, places, titles) in order
// of appearance. Entities are the highest-precision signal when the
// conversation names concrete things.
type EntityStrategy struct{}

// NewEntityStrategy creates the named-entity extraction stage.
func NewEntityStrategy() *EntityStrategy {
	return &EntityStrategy{}
}

// Name implements Strategy.
func (s *EntityStrategy) Name() string { return "entities" }

// Extract runs entity recognition over the text and collects the literal
// text of every recognized span.
func (s *EntityStrategy) Extract(_ context.Context, text string, _ []string) ([]string, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, fmt.Errorf("%w: entity recognition: %w", domain.ErrExtractionFailed, err)
	}

	var topics []string
	for _, ent := range doc.Entities() {
		topics = append(topics, ent.Text)
	}
	return topics, nil
}
