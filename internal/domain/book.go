package domain

import (
	"fmt"
	"strings"
)

// Book is a catalog item. Immutable after insert; identity is the ID.
type Book struct {
	ID          int
	Title       string
	Description string
	Price       int
	Seller      string
	Categories  []string
}

// NewBook validates and constructs a catalog item. Title and seller are
// required; the description defaults when absent so lexical matching never
// sees an empty document.
func NewBook(id int, title, description string, price int, seller string, categories []string) (Book, error) {
	if id <= 0 {
		return Book{}, fmt.Errorf("%w: book id must be positive, got %d", ErrInvalidRecord, id)
	}
	if strings.TrimSpace(title) == "" {
		return Book{}, fmt.Errorf("%w: book title is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(seller) == "" {
		return Book{}, fmt.Errorf("%w: book seller is required", ErrInvalidRecord)
	}
	if price < 0 {
		return Book{}, fmt.Errorf("%w: book price must be non-negative, got %d", ErrInvalidRecord, price)
	}
	if strings.TrimSpace(description) == "" {
		description = "No description provided"
	}
	return Book{
		ID:          id,
		Title:       title,
		Description: description,
		Price:       price,
		Seller:      seller,
		Categories:  categories,
	}, nil
}
