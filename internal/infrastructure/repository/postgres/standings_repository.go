package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/round"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/standings"
	qb "github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/querybuilder"
)

type StandingsRepository struct {
	db *sqlx.DB
}

func NewStandingsRepository(db *sqlx.DB) *StandingsRepository {
	return &StandingsRepository{db: db}
}

type gamePointsRow struct {
	UserID      string `db:"user_id"`
	TotalPoints int64  `db:"total_points"`
}

func (r *StandingsRepository) AggregateGamePoints(ctx context.Context) ([]standings.GamePointsRow, error) {
	query, args, err := qb.Select(
		"user_id",
		"COALESCE(SUM(points_awarded), 0) AS total_points",
	).From("user_bets").
		Where(qb.IsNotNull("points_awarded")).
		GroupBy("user_id").
		OrderBy("total_points DESC", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build aggregate game points query: %w", err)
	}

	var rows []gamePointsRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("aggregate game points: %w", err)
	}

	out := make([]standings.GamePointsRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, standings.GamePointsRow{
			UserID:      row.UserID,
			TotalPoints: int(row.TotalPoints),
		})
	}

	return out, nil
}

type dynamicPointsRow struct {
	UserID string `db:"user_id"`
	Points int64  `db:"points"`
}

func (r *StandingsRepository) DynamicPointsForLatestScoredRound(ctx context.Context) (map[string]int, error) {
	query, args, err := qb.Select("user_id", "points").
		From("round_dynamic_points").
		Where(qb.Expr(`betting_round_id = (
    SELECT id FROM betting_rounds
    WHERE status = ?
    ORDER BY scored_at DESC NULLS LAST, id DESC
    LIMIT 1
)`, round.StatusScored)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build dynamic points query: %w", err)
	}

	var rows []dynamicPointsRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select dynamic points for latest scored round: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.UserID] = int(row.Points)
	}

	return out, nil
}
