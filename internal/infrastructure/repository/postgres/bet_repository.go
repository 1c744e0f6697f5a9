package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/bet"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/round"
	qb "github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/querybuilder"
)

type BetRepository struct {
	db *sqlx.DB
}

func NewBetRepository(db *sqlx.DB) *BetRepository {
	return &BetRepository{db: db}
}

func (r *BetRepository) ListByRound(ctx context.Context, roundID int64) ([]bet.UserBet, error) {
	query, args, err := qb.Select("*").From("user_bets").
		Where(qb.Eq("betting_round_id", roundID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select bets by round query: %w", err)
	}

	var rows []userBetTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select bets by round: %w", err)
	}

	out := make([]bet.UserBet, 0, len(rows))
	for _, row := range rows {
		out = append(out, bet.UserBet{
			ID:            row.ID,
			UserID:        row.UserID,
			FixtureID:     row.FixtureID,
			RoundID:       row.RoundID,
			Prediction:    row.Prediction,
			PointsAwarded: nullInt(row.PointsAwarded),
		})
	}

	return out, nil
}

// batchPointsQuery writes all awards in one set-based statement instead
// of a round trip per bet.
const batchPointsQuery = `
UPDATE user_bets AS b
SET points_awarded = v.points,
    updated_at = NOW()
FROM (
    SELECT unnest($1::bigint[]) AS bet_id, unnest($2::bigint[]) AS points
) v
WHERE b.id = v.bet_id`

func (r *BetRepository) UpdatePointsBatch(ctx context.Context, roundID int64, awards []bet.PointsAward, scoredAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx update points batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if len(awards) > 0 {
		betIDs := make(pq.Int64Array, 0, len(awards))
		points := make(pq.Int64Array, 0, len(awards))
		for _, award := range awards {
			betIDs = append(betIDs, award.BetID)
			points = append(points, int64(award.Points))
		}
		if _, err := tx.ExecContext(ctx, batchPointsQuery, betIDs, points); err != nil {
			return fmt.Errorf("batch update bet points: %w", err)
		}
	}

	markQuery, markArgs, err := qb.Update("betting_rounds").
		Set("status", round.StatusScored).
		Set("scored_at", scoredAt).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", roundID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark round scored query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, markQuery, markArgs...); err != nil {
		return fmt.Errorf("mark round scored: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update points batch tx: %w", err)
	}
	return nil
}
