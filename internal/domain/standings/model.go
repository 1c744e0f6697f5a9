package standings

// GamePointsRow is one user's summed points_awarded across all bets.
type GamePointsRow struct {
	UserID      string
	TotalPoints int
}

// Entry is one derived leaderboard row. Rank uses standard competition
// ranking: tied combined totals share a rank and the sequence skips by
// the size of the tie group (1,2,2,4).
type Entry struct {
	UserID        string
	Username      string
	GamePoints    int
	DynamicPoints int
	CombinedTotal int
	Rank          int
	IsTied        bool
}
