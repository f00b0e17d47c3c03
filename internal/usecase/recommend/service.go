// Package recommend composes the matchers into the three exposed matching
// operations and enforces result-set policy: top-K truncation, zero-score
// filtering, and the diversity shuffle on conversational matches.
package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/litswap/litswap/internal/domain"
	"github.com/litswap/litswap/internal/match/fuzzy"
	"github.com/litswap/litswap/internal/match/lexical"
	"github.com/litswap/litswap/internal/match/semantic"
	"github.com/litswap/litswap/internal/metrics"
)

// Result-set policy constants.
const (
	preferenceTopK = 10 // preference-based matches returned
	popularCount   = 5  // popular-books fallback size
	shortlistSize  = 10 // conversational shortlist before the shuffle
	conversationK  = 5  // conversational matches returned
	peerTopK       = 5  // peer matches returned
	maxTopics      = 5  // extracted topics joined into the semantic query
	peerMaxDocFreq = 0.85
)

// DefaultFuzzyThreshold is the minimum confidence for a title match.
const DefaultFuzzyThreshold = 60

// ScoredBook pairs a catalog item with its similarity score.
type ScoredBook struct {
	Book  domain.Book
	Score float64
}

// ScoredPeer pairs a peer profile with its similarity score.
type ScoredPeer struct {
	Peer  domain.Peer
	Score float64
}

// BookMatches is a ranked book result set. Fallback marks the degraded
// popular-books response; NoTopics marks a conversation from which no
// topics could be extracted. Both are valid empty-or-degraded outcomes,
// distinct from errors and from a true zero-match.
type BookMatches struct {
	Books    []ScoredBook
	Fallback bool
	NoTopics bool
}

// TitleMatch is a fuzzy title resolution outcome. Found is false when the
// best candidate's confidence fell below the threshold.
type TitleMatch struct {
	Book       domain.Book
	Confidence int
	Found      bool
}

// Service is the ranking orchestrator. Stateless per operation: every call
// works from its inputs and the prebuilt index only.
type Service struct {
	catalog  CatalogReader
	peers    PeerReader
	index    EmbeddingIndex
	embedder Embedder
	topics   TopicExtractor
	logger   *zap.Logger

	threshold int

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates the ranking orchestrator.
func New(
	catalog CatalogReader,
	peers PeerReader,
	index EmbeddingIndex,
	embedder Embedder,
	topics TopicExtractor,
	logger *zap.Logger,
) *Service {
	return &Service{
		catalog:   catalog,
		peers:     peers,
		index:     index,
		embedder:  embedder,
		topics:    topics,
		logger:    logger,
		threshold: DefaultFuzzyThreshold,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand replaces the randomness source behind the diversity shuffle so
// tests can pin a seed.
func (s *Service) WithRand(rng *rand.Rand) *Service {
	s.rng = rng
	return s
}

// WithFuzzyThreshold overrides the minimum title-match confidence.
func (s *Service) WithFuzzyThreshold(threshold int) *Service {
	if threshold > 0 && threshold <= 100 {
		s.threshold = threshold
	}
	return s
}

// MatchByPreferences ranks catalog books by lexical similarity to the
// user's declared tags. Blank tags degrade to the first popularCount books
// in catalog order, flagged as a fallback rather than an error. Output is
// deterministic for a fixed tag set and catalog.
func (s *Service) MatchByPreferences(tags []string) BookMatches {
	books := s.catalog.Snapshot()
	query := strings.TrimSpace(strings.Join(tags, " "))

	if query == "" {
		n := popularCount
		if len(books) < n {
			n = len(books)
		}
		popular := make([]ScoredBook, n)
		for i := 0; i < n; i++ {
			popular[i] = ScoredBook{Book: books[i]}
		}
		metrics.MatchRequestsTotal.WithLabelValues("preferences", "fallback").Inc()
		return BookMatches{Books: popular, Fallback: true}
	}

	scored := lexical.Rank(query, descriptions(books), preferenceTopK)
	metrics.MatchRequestsTotal.WithLabelValues("preferences", "ok").Inc()
	return BookMatches{Books: collectBooks(scored, books)}
}

// MatchByConversation extracts topics from the conversation, ranks the
// embedding index semantically against them, and returns conversationK of
// the shortlistSize most similar books. The shortlist is shuffled before
// truncation so repeated identical queries surface different subsets of an
// otherwise static top set; this operation is intentionally
// non-deterministic.
func (s *Service) MatchByConversation(ctx context.Context, conversation string) (BookMatches, error) {
	if strings.TrimSpace(conversation) == "" {
		metrics.MatchRequestsTotal.WithLabelValues("conversation", "empty").Inc()
		return BookMatches{}, fmt.Errorf("conversation: %w", domain.ErrEmptyInput)
	}

	topics := s.topics.Extract(ctx, conversation, descriptions(s.catalog.Snapshot()))
	if len(topics) == 0 {
		metrics.MatchRequestsTotal.WithLabelValues("conversation", "no_topics").Inc()
		return BookMatches{NoTopics: true}, nil
	}
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}
	query := strings.Join(topics, " ")

	scored, err := semantic.Rank(ctx, s.embedder, query, s.index.Vectors(), shortlistSize)
	if err != nil {
		metrics.MatchRequestsTotal.WithLabelValues("conversation", "error").Inc()
		return BookMatches{}, fmt.Errorf("semantic rank: %w", err)
	}

	s.shuffle(scored)
	if len(scored) > conversationK {
		scored = scored[:conversationK]
	}

	s.logger.Debug("conversation matched",
		zap.Strings("topics", topics),
		zap.Int("results", len(scored)),
	)
	metrics.MatchRequestsTotal.WithLabelValues("conversation", "ok").Inc()
	return BookMatches{Books: collectBooks(scored, s.index.Books())}, nil
}

// MatchPeers ranks peers by lexical similarity between the user's tags and
// each peer's preference list. Zero-scoring peers are dropped; empty tags
// yield an empty result.
func (s *Service) MatchPeers(tags []string) []ScoredPeer {
	query := strings.TrimSpace(strings.Join(tags, " "))
	if query == "" {
		metrics.MatchRequestsTotal.WithLabelValues("peers", "empty").Inc()
		return nil
	}

	profiles := s.peers.Snapshot()
	docs := make([]string, len(profiles))
	for i, p := range profiles {
		docs[i] = p.PreferenceText()
	}

	scored := lexical.Rank(query, docs, 0,
		lexical.WithStopWords(),
		lexical.WithMaxDocFreq(peerMaxDocFreq),
	)

	var matched []ScoredPeer
	for _, sc := range scored {
		if sc.Score == 0 {
			continue
		}
		matched = append(matched, ScoredPeer{Peer: profiles[sc.Index], Score: sc.Score})
		if len(matched) == peerTopK {
			break
		}
	}
	metrics.MatchRequestsTotal.WithLabelValues("peers", "ok").Inc()
	return matched
}

// ResolveTitle fuzzy-matches a free-text title query against catalog
// titles. A best candidate below the confidence threshold is a valid
// not-found outcome, not an error.
func (s *Service) ResolveTitle(title string) (TitleMatch, error) {
	if strings.TrimSpace(title) == "" {
		metrics.MatchRequestsTotal.WithLabelValues("title", "empty").Inc()
		return TitleMatch{}, fmt.Errorf("title: %w", domain.ErrEmptyInput)
	}

	books := s.catalog.Snapshot()
	titles := make([]string, len(books))
	for i, b := range books {
		titles[i] = b.Title
	}

	best, confidence := fuzzy.ResolveTitle(title, titles)
	if best == "" || confidence < s.threshold {
		metrics.MatchRequestsTotal.WithLabelValues("title", "low_confidence").Inc()
		return TitleMatch{Confidence: confidence}, nil
	}

	book, err := s.catalog.GetByTitle(best)
	if err != nil {
		metrics.MatchRequestsTotal.WithLabelValues("title", "error").Inc()
		return TitleMatch{}, fmt.Errorf("resolve %q: %w", best, err)
	}
	metrics.MatchRequestsTotal.WithLabelValues("title", "ok").Inc()
	return TitleMatch{Book: book, Confidence: confidence, Found: true}, nil
}

func (s *Service) shuffle(scored []domain.Scored) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(scored), func(i, j int) {
		scored[i], scored[j] = scored[j], scored[i]
	})
}

func descriptions(books []domain.Book) []string {
	docs := make([]string, len(books))
	for i, b := range books {
		docs[i] = b.Description
	}
	return docs
}

func collectBooks(scored []domain.Scored, books []domain.Book) []ScoredBook {
	out := make([]ScoredBook, 0, len(scored))
	for _, sc := range scored {
		if sc.Index < 0 || sc.Index >= len(books) {
			continue
		}
		out = append(out, ScoredBook{Book: books[sc.Index], Score: sc.Score})
	}
	return out
}
