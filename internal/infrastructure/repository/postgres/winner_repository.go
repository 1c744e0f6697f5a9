package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/winner"
	qb "github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/querybuilder"
)

type WinnerRepository struct {
	db *sqlx.DB
}

func NewWinnerRepository(db *sqlx.DB) *WinnerRepository {
	return &WinnerRepository{db: db}
}

func (r *WinnerRepository) ListBySeasonAndType(ctx context.Context, seasonID int64, competitionType string) ([]winner.SeasonWinner, error) {
	query, args, err := qb.Select("*").From("season_winners").
		Where(
			qb.Eq("season_id", seasonID),
			qb.Eq("competition_type", competitionType),
		).
		OrderBy("total_points DESC", "username", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list season winners query: %w", err)
	}

	var rows []seasonWinnerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list season winners: %w", err)
	}

	out := make([]winner.SeasonWinner, 0, len(rows))
	for _, row := range rows {
		out = append(out, winner.SeasonWinner{
			SeasonID:        row.SeasonID,
			LeagueID:        row.LeagueID,
			UserID:          row.UserID,
			Username:        row.Username,
			GamePoints:      row.GamePoints,
			DynamicPoints:   row.DynamicPoints,
			TotalPoints:     row.TotalPoints,
			CompetitionType: row.CompetitionType,
			IsTied:          row.IsTied,
			CreatedAt:       row.CreatedAt,
		})
	}

	return out, nil
}

func (r *WinnerRepository) UpsertBatch(ctx context.Context, winners []winner.SeasonWinner) error {
	if len(winners) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert season winners: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range winners {
		insertModel := seasonWinnerInsertModel{
			SeasonID:        item.SeasonID,
			LeagueID:        item.LeagueID,
			UserID:          item.UserID,
			Username:        item.Username,
			GamePoints:      item.GamePoints,
			DynamicPoints:   item.DynamicPoints,
			TotalPoints:     item.TotalPoints,
			CompetitionType: item.CompetitionType,
			IsTied:          item.IsTied,
			CreatedAt:       item.CreatedAt,
		}
		query, args, err := qb.InsertModel("season_winners", insertModel, `ON CONFLICT (season_id, user_id, competition_type)
DO UPDATE SET
    league_id = EXCLUDED.league_id,
    username = EXCLUDED.username,
    game_points = EXCLUDED.game_points,
    dynamic_points = EXCLUDED.dynamic_points,
    total_points = EXCLUDED.total_points,
    is_tied = EXCLUDED.is_tied`)
		if err != nil {
			return fmt.Errorf("build upsert season winner query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert season winner: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert season winners tx: %w", err)
	}
	return nil
}
