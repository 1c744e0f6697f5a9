package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/cup"
	qb "github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/querybuilder"
)

type CupRepository struct {
	db *sqlx.DB
}

func NewCupRepository(db *sqlx.DB) *CupRepository {
	return &CupRepository{db: db}
}

type cupStandingRow struct {
	SeasonID    int64  `db:"season_id"`
	UserID      string `db:"user_id"`
	Username    string `db:"username"`
	TotalPoints int64  `db:"total_points"`
}

func (r *CupRepository) AggregatePointsBySeason(ctx context.Context, seasonID int64) ([]cup.StandingRow, error) {
	query, args, err := qb.Select(
		"p.season_id",
		"p.user_id",
		"COALESCE(MAX(pr.full_name), '') AS username",
		"COALESCE(SUM(p.points), 0) AS total_points",
	).From("user_last_round_special_points p").
		Join("LEFT JOIN profiles pr ON pr.id = p.user_id").
		Where(qb.Eq("p.season_id", seasonID)).
		GroupBy("p.season_id", "p.user_id").
		OrderBy("total_points DESC", "username", "p.user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build aggregate cup points query: %w", err)
	}

	var rows []cupStandingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("aggregate cup points by season: %w", err)
	}

	out := make([]cup.StandingRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, cup.StandingRow{
			SeasonID:    row.SeasonID,
			UserID:      row.UserID,
			Username:    row.Username,
			TotalPoints: int(row.TotalPoints),
		})
	}

	return out, nil
}
