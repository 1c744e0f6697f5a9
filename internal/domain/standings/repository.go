package standings

import "context"

type Repository interface {
	// AggregateGamePoints sums points_awarded per user across all bets
	// with a single set-based query.
	AggregateGamePoints(ctx context.Context) ([]GamePointsRow, error)

	// DynamicPointsForLatestScoredRound maps user id to bonus-question
	// points for the most recently scored round. Users without a row
	// simply do not appear; a nil map with nil error never occurs — a
	// subsystem failure returns an error instead.
	DynamicPointsForLatestScoredRound(ctx context.Context) (map[string]int, error)
}
