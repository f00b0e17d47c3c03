// Package loader reads the seed catalog and peer datasets from CSV files.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/litswap/litswap/internal/domain"
)

// LoadBooks reads the book catalog from a CSV file with columns
// id, title, description, price, seller and category. Column order is
// taken from the header row.
func LoadBooks(path string) ([]domain.Book, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open books csv: %w", err)
	}
	defer f.Close()

	return ParseBooks(f)
}

// ParseBooks reads book records from r. See LoadBooks for the format.
func ParseBooks(r io.Reader) ([]domain.Book, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read books header: %w", err)
	}
	cols := columnIndex(header)

	var books []domain.Book
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read books record: %w", err)
		}
		line++

		price, err := parsePrice(field(record, cols, "price"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		id := len(books) + 1
		if raw := field(record, cols, "id"); raw != "" {
			id, err = strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid id %q: %w", line, raw, domain.ErrInvalidRecord)
			}
		}

		var categories []string
		if raw := field(record, cols, "category"); raw != "" {
			categories = splitList(raw)
		}

		book, err := domain.NewBook(
			id,
			field(record, cols, "title"),
			field(record, cols, "description"),
			price,
			field(record, cols, "seller"),
			categories,
		)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		books = append(books, book)
	}

	return books, nil
}

// LoadPeers reads the peer dataset from a CSV file with columns
// name, preferences and status. Preferences is a comma separated list.
func LoadPeers(path string) ([]domain.Peer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open friends csv: %w", err)
	}
	defer f.Close()

	return ParsePeers(f)
}

// ParsePeers reads peer records from r. See LoadPeers for the format.
func ParsePeers(r io.Reader) ([]domain.Peer, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read friends header: %w", err)
	}
	cols := columnIndex(header)

	var peers []domain.Peer
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read friends record: %w", err)
		}
		line++

		peer, err := domain.NewPeer(
			field(record, cols, "name"),
			splitList(field(record, cols, "preferences")),
			field(record, cols, "status"),
		)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		peers = append(peers, peer)
	}

	return peers, nil
}

// columnIndex maps normalized header names to their positions.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parsePrice(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	price, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", raw, domain.ErrInvalidRecord)
	}
	return price, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
