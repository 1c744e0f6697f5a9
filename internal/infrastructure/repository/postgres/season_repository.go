package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/round"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/season"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/winner"
	qb "github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/querybuilder"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetByID(ctx context.Context, id int64) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season: %w", err)
	}

	return seasonToDomain(row), true, nil
}

func (r *SeasonRepository) GetCurrent(ctx context.Context) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("is_current", true)).
		OrderBy("id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get current season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get current season: %w", err)
	}

	return seasonToDomain(row), true, nil
}

func (r *SeasonRepository) ListFullyScoredUncompleted(ctx context.Context) ([]season.Season, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(
			qb.IsNull("completed_at"),
			qb.Expr(`EXISTS (
    SELECT 1 FROM betting_rounds br WHERE br.season_id = seasons.id
)`),
			qb.Expr(`NOT EXISTS (
    SELECT 1 FROM betting_rounds br
    WHERE br.season_id = seasons.id AND br.status <> ?
)`, round.StatusScored),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fully scored seasons query: %w", err)
	}

	var rows []seasonTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list fully scored uncompleted seasons: %w", err)
	}

	return seasonsToDomain(rows), nil
}

func (r *SeasonRepository) ListAwaitingWinnerDetermination(ctx context.Context) ([]season.Season, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(
			qb.IsNotNull("completed_at"),
			qb.IsNull("winner_determined_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list seasons awaiting winners query: %w", err)
	}

	var rows []seasonTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list seasons awaiting winner determination: %w", err)
	}

	return seasonsToDomain(rows), nil
}

// ListAwaitingCupWinnerDetermination re-queries cup eligibility on every
// pass so a determination that failed once is retried until its winner
// rows exist.
func (r *SeasonRepository) ListAwaitingCupWinnerDetermination(ctx context.Context) ([]season.Season, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(
			qb.IsNotNull("completed_at"),
			qb.Eq("last_round_special_activated", true),
			qb.Expr(`NOT EXISTS (
    SELECT 1 FROM season_winners sw
    WHERE sw.season_id = seasons.id AND sw.competition_type = ?
)`, winner.CompetitionLastRoundSpecial),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list seasons awaiting cup winners query: %w", err)
	}

	var rows []seasonTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list seasons awaiting cup winner determination: %w", err)
	}

	return seasonsToDomain(rows), nil
}

func (r *SeasonRepository) MarkCompleted(ctx context.Context, id int64, completedAt time.Time) (bool, error) {
	query, args, err := qb.Update("seasons").
		Set("completed_at", completedAt).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.IsNull("completed_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build mark season completed query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark season completed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark season completed rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *SeasonRepository) StampWinnerDetermined(ctx context.Context, id int64, determinedAt time.Time) error {
	query, args, err := qb.Update("seasons").
		Set("winner_determined_at", determinedAt).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build stamp winner determined query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("stamp winner determined: %w", err)
	}
	return nil
}

// ActivateLastRoundSpecial flips the activation flag only when it is
// still unset. Zero rows affected means a concurrent run won the race.
func (r *SeasonRepository) ActivateLastRoundSpecial(ctx context.Context, id int64, activatedAt time.Time) (bool, error) {
	query, args, err := qb.Update("seasons").
		Set("last_round_special_activated", true).
		Set("last_round_special_activated_at", activatedAt).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.Eq("last_round_special_activated", false),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build activate last round special query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("activate last round special: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("activate last round special rows affected: %w", err)
	}

	return affected == 0, nil
}

func seasonToDomain(row seasonTableModel) season.Season {
	return season.Season{
		ID:                          row.ID,
		CompetitionID:               row.CompetitionID,
		Name:                        row.Name,
		IsCurrent:                   row.IsCurrent,
		BonusModeActive:             row.BonusModeActive,
		CompletedAt:                 row.CompletedAt,
		WinnerDeterminedAt:          row.WinnerDeterminedAt,
		LastRoundSpecialActivated:   row.LastRoundSpecialActivated,
		LastRoundSpecialActivatedAt: row.LastRoundSpecialActivatedAt,
	}
}

func seasonsToDomain(rows []seasonTableModel) []season.Season {
	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, seasonToDomain(row))
	}
	return out
}
