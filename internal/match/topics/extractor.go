// Package topics pulls a short list of salient terms out of freeform
// conversation text. Strategies are tried in strict priority order; each
// stage runs only when the previous one produced nothing, so the extractor
// is never silent while any usable terms exist at all.
package topics

import (
	"context"

	"go.uber.org/zap"

	"github.com/litswap/litswap/internal/metrics"
)

// Strategy extracts candidate topics from a text. The corpus holds the
// catalog documents; only corpus-aware strategies use it. A strategy error
// degrades to the next stage rather than failing the cascade.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, text string, corpus []string) ([]string, error)
}

// Extractor runs an ordered strategy cascade.
type Extractor struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewExtractor creates a cascade over the given strategies, tried in order.
func NewExtractor(logger *zap.Logger, strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies, logger: logger}
}

// Extract returns the first non-empty strategy result. An empty slice means
// "no topics detected", a defined outcome distinct from a failure: strategy
// errors are recovered locally by falling through to the next stage.
func (e *Extractor) Extract(ctx context.Context, text string, corpus []string) []string {
	for _, s := range e.strategies {
		topics, err := s.Extract(ctx, text, corpus)
		if err != nil {
			metrics.TopicStageTotal.WithLabelValues(s.Name(), "error").Inc()
			e.logger.Warn("topic strategy failed, trying next stage",
				zap.String("strategy", s.Name()),
				zap.Error(err),
			)
			continue
		}
		if len(topics) > 0 {
			metrics.TopicStageTotal.WithLabelValues(s.Name(), "hit").Inc()
			return topics
		}
		metrics.TopicStageTotal.WithLabelValues(s.Name(), "miss").Inc()
	}
	return nil
}
