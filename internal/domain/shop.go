package domain

// ShopItem is a reward redeemable with points.
type ShopItem struct {
	Name   string
	Points int
}

// LeaderboardEntry is a ranked row on the points leaderboard.
type LeaderboardEntry struct {
	Rank     int
	Username string
	Points   int
}
