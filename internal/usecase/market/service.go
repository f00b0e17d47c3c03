// Package market exposes the book marketplace: listing the catalog and
// appending new listings for sale or donation.
package market

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/litswap/litswap/internal/domain"
)

// Service handles marketplace operations over the catalog store.
type Service struct {
	catalog Catalog
	logger  *zap.Logger
}

// New creates a market service.
func New(catalog Catalog, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, logger: logger}
}

// Books returns the full catalog in order.
func (s *Service) Books() []domain.Book {
	return s.catalog.Snapshot()
}

// Book returns a single catalog item by id.
func (s *Service) Book(id int) (domain.Book, error) {
	return s.catalog.Get(id)
}

// AddListing appends a new listing and returns its id. The embedding index
// does not pick the listing up until the next rebuild; lexical matching
// sees it immediately.
func (s *Service) AddListing(title, description string, price int, seller string, categories []string) (int, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(seller) == "" {
		return 0, fmt.Errorf("title and seller are required: %w", domain.ErrEmptyInput)
	}

	id, err := s.catalog.Add(title, description, price, seller, categories)
	if err != nil {
		return 0, fmt.Errorf("add listing: %w", err)
	}

	s.logger.Info("listing added",
		zap.Int("book_id", id),
		zap.String("title", title),
		zap.String("seller", seller),
		zap.Int("price", price),
	)
	return id, nil
}
