package domain

import (
	"fmt"
	"strings"
)

// Peer is another platform user offered as a match candidate.
// Loaded once at startup; immutable within a session.
type Peer struct {
	Name        string
	Preferences []string
	Status      string
}

// NewPeer validates and constructs a peer profile.
func NewPeer(name string, preferences []string, status string) (Peer, error) {
	if strings.TrimSpace(name) == "" {
		return Peer{}, fmt.Errorf("%w: peer name is required", ErrInvalidRecord)
	}
	return Peer{Name: name, Preferences: preferences, Status: status}, nil
}

// PreferenceText joins the preference tags into the document form the
// lexical matcher ranks against.
func (p Peer) PreferenceText() string {
	return strings.Join(p.Preferences, " ")
}
