// Package litswap embeds the book-exchange matching engine in a Go process
// without running the HTTP server. The client loads a catalog and peer
// profiles, optionally builds a semantic index, and exposes the same
// matching operations the API serves.
package litswap
