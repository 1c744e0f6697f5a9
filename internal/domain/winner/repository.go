package winner

import "context"

type Repository interface {
	ListBySeasonAndType(ctx context.Context, seasonID int64, competitionType string) ([]SeasonWinner, error)

	// UpsertBatch inserts winner rows keyed by
	// (season, user, competition_type). A retried upsert overwrites the
	// conflicting row with identical data instead of erroring.
	UpsertBatch(ctx context.Context, winners []SeasonWinner) error
}
