package bet

import (
	"context"
	"time"
)

type Repository interface {
	ListByRound(ctx context.Context, roundID int64) ([]UserBet, error)

	// UpdatePointsBatch writes every award and flips the round to scored
	// in one transaction, so a round can never end up half-scored.
	UpdatePointsBatch(ctx context.Context, roundID int64, awards []PointsAward, scoredAt time.Time) error
}
