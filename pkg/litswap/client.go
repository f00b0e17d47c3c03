package litswap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/litswap/litswap/internal/domain"
	"github.com/litswap/litswap/internal/index"
	"github.com/litswap/litswap/internal/loader"
	"github.com/litswap/litswap/internal/match/topics"
	"github.com/litswap/litswap/internal/repository/catalog"
	"github.com/litswap/litswap/internal/repository/peers"
	recommenduc "github.com/litswap/litswap/internal/usecase/recommend"
)

// EmbeddingResult carries a vector and provider token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text. Plug in any provider; without one, lexical
// operations still work and conversational matching returns an error.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Book is a catalog item.
type Book struct {
	ID          int
	Title       string
	Description string
	Price       int
	Seller      string
	Categories  []string
}

// Peer is a candidate exchange partner.
type Peer struct {
	Name        string
	Preferences []string
	Status      string
}

// ScoredBook pairs a book with its similarity score.
type ScoredBook struct {
	Book  Book
	Score float64
}

// ScoredPeer pairs a peer with its similarity score.
type ScoredPeer struct {
	Peer  Peer
	Score float64
}

// BookMatches is a ranked result set. Fallback marks the popular-books
// degradation for blank preferences; NoTopics marks a conversation with no
// extractable topics.
type BookMatches struct {
	Books    []ScoredBook
	Fallback bool
	NoTopics bool
}

// TitleMatch is a fuzzy lookup outcome.
type TitleMatch struct {
	Book       Book
	Confidence int
	Found      bool
}

type clientConfig struct {
	embedder       Embedder
	logger         *zap.Logger
	fuzzyThreshold int
	poolSize       int
}

// Option configures a Client.
type Option func(*clientConfig)

// WithEmbedder sets the embedding provider for semantic matching.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) { c.embedder = e }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithFuzzyThreshold overrides the minimum title-match confidence.
func WithFuzzyThreshold(threshold int) Option {
	return func(c *clientConfig) { c.fuzzyThreshold = threshold }
}

// WithPoolSize sets the worker count for the index build.
func WithPoolSize(size int) Option {
	return func(c *clientConfig) { c.poolSize = size }
}

// Client is the embedded matching engine.
type Client struct {
	catalog   *catalog.Store
	recommend *recommenduc.Service
}

// New creates a client over an in-memory catalog and peer set. When an
// embedder is configured, every book description is embedded up front; the
// provided context bounds that index build.
func New(ctx context.Context, books []Book, friends []Peer, opts ...Option) (*Client, error) {
	cfg := &clientConfig{logger: zap.NewNop()}
	for _, o := range opts {
		o(cfg)
	}

	domBooks := make([]domain.Book, len(books))
	for i, b := range books {
		db, err := domain.NewBook(b.ID, b.Title, b.Description, b.Price, b.Seller, b.Categories)
		if err != nil {
			return nil, fmt.Errorf("litswap: book %d: %w", i, err)
		}
		domBooks[i] = db
	}
	domPeers := make([]domain.Peer, len(friends))
	for i, p := range friends {
		dp, err := domain.NewPeer(p.Name, p.Preferences, p.Status)
		if err != nil {
			return nil, fmt.Errorf("litswap: peer %d: %w", i, err)
		}
		domPeers[i] = dp
	}

	var embedder domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		embedder = &embedderAdapter{inner: cfg.embedder}
	}

	var idxOpts []index.Option
	if cfg.poolSize > 0 {
		idxOpts = append(idxOpts, index.WithPoolSize(cfg.poolSize))
	}
	idxOpts = append(idxOpts, index.WithLogger(cfg.logger))

	// Without an embedder the index stays empty; conversational matching
	// then reports the embedder error while everything lexical works.
	idx := &index.Index{}
	if cfg.embedder != nil {
		built, err := index.Build(ctx, embedder, domBooks, idxOpts...)
		if err != nil {
			return nil, fmt.Errorf("litswap: build index: %w", err)
		}
		idx = built
	}

	extractor := topics.NewExtractor(cfg.logger,
		topics.NewEntityStrategy(),
		topics.NewKeyphraseStrategy(embedder),
		topics.NewLexicalStrategy(),
	)

	catalogStore := catalog.New(domBooks)
	svc := recommenduc.New(catalogStore, peers.New(domPeers), idx, embedder, extractor, cfg.logger)
	if cfg.fuzzyThreshold > 0 {
		svc = svc.WithFuzzyThreshold(cfg.fuzzyThreshold)
	}

	return &Client{catalog: catalogStore, recommend: svc}, nil
}

// NewFromCSV creates a client from the catalog and friends CSV files the
// server loads at startup.
func NewFromCSV(ctx context.Context, booksPath, friendsPath string, opts ...Option) (*Client, error) {
	domBooks, err := loader.LoadBooks(booksPath)
	if err != nil {
		return nil, fmt.Errorf("litswap: %w", err)
	}
	domPeers, err := loader.LoadPeers(friendsPath)
	if err != nil {
		return nil, fmt.Errorf("litswap: %w", err)
	}

	books := make([]Book, len(domBooks))
	for i, b := range domBooks {
		books[i] = bookFromDomain(b)
	}
	friends := make([]Peer, len(domPeers))
	for i, p := range domPeers {
		friends[i] = Peer{Name: p.Name, Preferences: p.Preferences, Status: p.Status}
	}
	return New(ctx, books, friends, opts...)
}

// MatchBooks ranks the catalog against preference tags. Blank tags degrade
// to the popular-books fallback.
func (c *Client) MatchBooks(tags []string) BookMatches {
	return matchesFromDomain(c.recommend.MatchByPreferences(tags))
}

// Chat extracts topics from a conversation and matches books semantically.
// Requires a configured embedder.
func (c *Client) Chat(ctx context.Context, message string) (BookMatches, error) {
	m, err := c.recommend.MatchByConversation(ctx, message)
	if err != nil {
		return BookMatches{}, err
	}
	return matchesFromDomain(m), nil
}

// SearchBook fuzzy-resolves a free-text title.
func (c *Client) SearchBook(title string) (TitleMatch, error) {
	m, err := c.recommend.ResolveTitle(title)
	if err != nil {
		return TitleMatch{}, err
	}
	return TitleMatch{Book: bookFromDomain(m.Book), Confidence: m.Confidence, Found: m.Found}, nil
}

// MatchFriends ranks peers against preference tags.
func (c *Client) MatchFriends(tags []string) []ScoredPeer {
	matched := c.recommend.MatchPeers(tags)
	out := make([]ScoredPeer, len(matched))
	for i, m := range matched {
		out[i] = ScoredPeer{
			Peer:  Peer{Name: m.Peer.Name, Preferences: m.Peer.Preferences, Status: m.Peer.Status},
			Score: m.Score,
		}
	}
	return out
}

// AddBook appends a listing to the catalog and returns its id. The listing
// joins lexical matching immediately; semantic matching sees it only after
// a new client is built.
func (c *Client) AddBook(title, description string, price int, seller string, categories []string) (int, error) {
	return c.catalog.Add(title, description, price, seller, categories)
}

// Books returns the current catalog.
func (c *Client) Books() []Book {
	snap := c.catalog.Snapshot()
	out := make([]Book, len(snap))
	for i, b := range snap {
		out[i] = bookFromDomain(b)
	}
	return out
}

func bookFromDomain(b domain.Book) Book {
	return Book{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Price:       b.Price,
		Seller:      b.Seller,
		Categories:  b.Categories,
	}
}

func matchesFromDomain(m recommenduc.BookMatches) BookMatches {
	books := make([]ScoredBook, len(m.Books))
	for i, sb := range m.Books {
		books[i] = ScoredBook{Book: bookFromDomain(sb.Book), Score: sb.Score}
	}
	return BookMatches{Books: books, Fallback: m.Fallback, NoTopics: m.NoTopics}
}

// embedderAdapter wraps the public Embedder to satisfy domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"litswap: embedder not configured (use WithEmbedder for conversational matching)",
	)
}
