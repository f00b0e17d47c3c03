// Package catalog is the in-memory book catalog. Appends are serialized
// through a single writer; readers always observe a complete snapshot.
package catalog

import (
	"fmt"
	"sync"

	"github.com/litswap/litswap/internal/domain"
)

// Store holds the catalog. Appended slices are copied before publication,
// so a snapshot handed to a reader never mutates under it: a concurrent
// reader sees either the old catalog length or the new one.
type Store struct {
	mu     sync.RWMutex
	books  []domain.Book
	nextID int
}

// New creates a catalog store seeded with the loaded books.
func New(initial []domain.Book) *Store {
	books := make([]domain.Book, len(initial))
	copy(books, initial)

	nextID := 1
	for _, b := range books {
		if b.ID >= nextID {
			nextID = b.ID + 1
		}
	}
	return &Store{books: books, nextID: nextID}
}

// Snapshot returns the current catalog. The returned slice is immutable:
// Add publishes a fresh copy instead of appending in place.
func (s *Store) Snapshot() []domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.books
}

// Get returns the book with the given id.
func (s *Store) Get(id int) (domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.Book{}, fmt.Errorf("book %d: %w", id, domain.ErrBookNotFound)
}

// GetByTitle returns the first book with an exactly matching title.
func (s *Store) GetByTitle(title string) (domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.Title == title {
			return b, nil
		}
	}
	return domain.Book{}, fmt.Errorf("book %q: %w", title, domain.ErrBookNotFound)
}

// Len returns the catalog size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// Add validates and appends a new listing, returning its id. Ids are
// strictly increasing; prior entries are never modified.
func (s *Store) Add(title, description string, price int, seller string, categories []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := domain.NewBook(s.nextID, title, description, price, seller, categories)
	if err != nil {
		return 0, err
	}

	books := make([]domain.Book, len(s.books), len(s.books)+1)
	copy(books, s.books)
	s.books = append(books, book)
	s.nextID++
	return book.ID, nil
}
