package market

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/litswap/litswap/internal/domain"
)

// --- Mocks ---

type mockCatalog struct {
	books  []domain.Book
	nextID int
	addErr error
}

func (m *mockCatalog) Snapshot() []domain.Book { return m.books }

func (m *mockCatalog) Get(id int) (domain.Book, error) {
	for _, b := range m.books {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.Book{}, domain.ErrBookNotFound
}

func (m *mockCatalog) Add(title, description string, price int, seller string, categories []string) (int, error) {
	if m.addErr != nil {
		return 0, m.addErr
	}
	m.nextID++
	b, err := domain.NewBook(m.nextID, title, description, price, seller, categories)
	if err != nil {
		return 0, err
	}
	m.books = append(m.books, b)
	return b.ID, nil
}

func newMockCatalog() *mockCatalog {
	b, _ := domain.NewBook(1, "Dune", "desert epic", 10, "alice", nil)
	return &mockCatalog{books: []domain.Book{b}, nextID: 1}
}

// --- Tests ---

func TestBooks(t *testing.T) {
	s := New(newMockCatalog(), zap.NewNop())

	books := s.Books()
	if len(books) != 1 || books[0].Title != "Dune" {
		t.Errorf("unexpected books: %+v", books)
	}
}

func TestBook(t *testing.T) {
	s := New(newMockCatalog(), zap.NewNop())

	b, err := s.Book(1)
	if err != nil || b.Title != "Dune" {
		t.Errorf("Book(1) = %+v, %v", b, err)
	}

	_, err = s.Book(99)
	if !errors.Is(err, domain.ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound, got %v", err)
	}
}

func TestAddListing(t *testing.T) {
	catalog := newMockCatalog()
	s := New(catalog, zap.NewNop())

	id, err := s.AddListing("Hyperion", "pilgrim tales", 15, "dana", []string{"Science Fiction"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 2 {
		t.Errorf("expected id 2, got %d", id)
	}
	if len(catalog.books) != 2 {
		t.Errorf("expected 2 books, got %d", len(catalog.books))
	}
}

func TestAddListing_RequiresTitleAndSeller(t *testing.T) {
	s := New(newMockCatalog(), zap.NewNop())

	if _, err := s.AddListing("", "d", 1, "dana", nil); !errors.Is(err, domain.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput for blank title, got %v", err)
	}
	if _, err := s.AddListing("Title", "d", 1, "  ", nil); !errors.Is(err, domain.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput for blank seller, got %v", err)
	}
}

func TestAddListing_WrapsStoreError(t *testing.T) {
	catalog := newMockCatalog()
	catalog.addErr = domain.ErrInvalidRecord
	s := New(catalog, zap.NewNop())

	_, err := s.AddListing("Title", "d", 1, "dana", nil)
	if !errors.Is(err, domain.ErrInvalidRecord) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
