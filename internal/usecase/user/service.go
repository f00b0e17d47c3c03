// Package user tracks per-user platform state: points, shared-book counts,
// declared genre preferences, and shop redemptions. State lives for the
// process lifetime only.
package user

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/litswap/litswap/internal/domain"
)

// seedLeaderboard is the static leaderboard the live users merge into.
var seedLeaderboard = []domain.LeaderboardEntry{
	{Username: "Alice", Points: 720},
	{Username: "Bob", Points: 650},
	{Username: "Charlie", Points: 580},
	{Username: "Eve", Points: 410},
}

// defaultShopItems is the static redemption catalog.
var defaultShopItems = []domain.ShopItem{
	{Name: "Free Ticket to Art Science Museum", Points: 50},
	{Name: "20% Off Kinokuniya Voucher", Points: 60},
	{Name: "Exclusive Collector's Edition Bookmarks", Points: 30},
	{Name: "$10 Book Voucher for Local Bookstores", Points: 70},
	{Name: "Free Coffee at Starbucks", Points: 40},
	{Name: "Mystery Book Box", Points: 100},
	{Name: "3-Month Audiobook Subscription", Points: 90},
	{Name: "VIP Lounge Access at National Library", Points: 120},
	{Name: "Personalized Engraved Fountain Pen", Points: 80},
	{Name: "Free Entry to a Literary Festival", Points: 110},
}

type state struct {
	points      int
	booksShared int
	categories  []string
	friends     []string
}

// Service owns in-memory user state. It is injected into collaborators
// rather than held as a process-wide singleton so tests can supply
// isolated fixtures.
type Service struct {
	mu     sync.RWMutex
	users  map[string]*state
	shop   []domain.ShopItem
	logger *zap.Logger
}

// New creates a user service.
func New(logger *zap.Logger) *Service {
	return &Service{
		users:  make(map[string]*state),
		shop:   defaultShopItems,
		logger: logger,
	}
}

// Login provisions the user on first sight and returns the current points
// balance plus whether the account was just created.
func (s *Service) Login(username string) (int, bool, error) {
	if strings.TrimSpace(username) == "" {
		return 0, false, fmt.Errorf("username: %w", domain.ErrEmptyInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[username]; ok {
		return u.points, false, nil
	}
	s.users[username] = &state{}
	s.logger.Info("user provisioned", zap.String("username", username))
	return 0, true, nil
}

// SavePreferences replaces the user's declared genre preferences.
func (s *Service) SavePreferences(username string, preferences []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return fmt.Errorf("%q: %w", username, domain.ErrUserNotFound)
	}
	u.categories = append([]string(nil), preferences...)
	return nil
}

// Preferences returns the user's declared genre preferences.
func (s *Service) Preferences(username string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, fmt.Errorf("%q: %w", username, domain.ErrUserNotFound)
	}
	return append([]string(nil), u.categories...), nil
}

// Points returns the user's balance.
func (s *Service) Points(username string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return 0, fmt.Errorf("%q: %w", username, domain.ErrUserNotFound)
	}
	return u.points, nil
}

// AddPoints awards points for sharing or donating a book and bumps the
// shared-book count when shared is true. Returns the new balance.
func (s *Service) AddPoints(username string, delta int, shared bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return 0, fmt.Errorf("%q: %w", username, domain.ErrUserNotFound)
	}
	if u.points+delta < 0 {
		return 0, fmt.Errorf("balance %d, delta %d: %w", u.points, delta, domain.ErrInsufficientPoints)
	}
	u.points += delta
	if shared {
		u.booksShared++
	}
	return u.points, nil
}

// ShopItems returns the redemption catalog.
func (s *Service) ShopItems() []domain.ShopItem {
	return s.shop
}

// Redeem deducts the item's cost from the user's balance and returns the
// remaining points.
func (s *Service) Redeem(username, itemName string) (int, error) {
	var item domain.ShopItem
	found := false
	for _, it := range s.shop {
		if it.Name == itemName {
			item, found = it, true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("%q: %w", itemName, domain.ErrShopItemNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return 0, fmt.Errorf("%q: %w", username, domain.ErrUserNotFound)
	}
	if u.points < item.Points {
		return 0, fmt.Errorf("balance %d, cost %d: %w", u.points, item.Points, domain.ErrInsufficientPoints)
	}
	u.points -= item.Points
	s.logger.Info("shop item redeemed",
		zap.String("username", username),
		zap.String("item", itemName),
		zap.Int("cost", item.Points),
	)
	return u.points, nil
}

// Leaderboard merges live users into the static seed and returns entries
// ranked by points descending, ties broken by username for stable output.
func (s *Service) Leaderboard() []domain.LeaderboardEntry {
	s.mu.RLock()
	entries := make([]domain.LeaderboardEntry, 0, len(seedLeaderboard)+len(s.users))
	entries = append(entries, seedLeaderboard...)
	for name, u := range s.users {
		entries = append(entries, domain.LeaderboardEntry{Username: name, Points: u.points})
	}
	s.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Username < entries[j].Username
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
