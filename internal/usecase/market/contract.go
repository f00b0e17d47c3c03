package market

import "github.com/litswap/litswap/internal/domain"

// Catalog is the storage contract for marketplace listings.
type Catalog interface {
	Snapshot() []domain.Book
	Get(id int) (domain.Book, error)
	Add(title, description string, price int, seller string, categories []string) (int, error)
}
