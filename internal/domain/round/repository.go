package round

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (BettingRound, bool, error)

	// ListWithAllFixturesFinished returns open or locked rounds whose
	// linked fixtures have all reached a terminal status.
	ListWithAllFixturesFinished(ctx context.Context) ([]BettingRound, error)

	// ListInScoring returns rounds stuck in the intermediate scoring
	// status, typically left behind by a previously failed pass.
	ListInScoring(ctx context.Context) ([]BettingRound, error)

	// MarkScoring transitions a round from open/locked to scoring.
	// Returns false when the round already moved past that state.
	MarkScoring(ctx context.Context, id int64) (bool, error)
}
