package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/round"
	qb "github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/querybuilder"
)

type RoundRepository struct {
	db *sqlx.DB
}

func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) GetByID(ctx context.Context, id int64) (round.BettingRound, bool, error) {
	query, args, err := qb.Select("*").From("betting_rounds").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return round.BettingRound{}, false, fmt.Errorf("build get betting round query: %w", err)
	}

	var row bettingRoundTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return round.BettingRound{}, false, nil
		}
		return round.BettingRound{}, false, fmt.Errorf("get betting round: %w", err)
	}

	return roundToDomain(row), true, nil
}

func (r *RoundRepository) ListWithAllFixturesFinished(ctx context.Context) ([]round.BettingRound, error) {
	query, args, err := qb.Select("*").From("betting_rounds").
		Where(
			qb.In("status", []any{round.StatusOpen, round.StatusLocked}),
			qb.Expr(`EXISTS (
    SELECT 1 FROM fixtures f WHERE f.betting_round_id = betting_rounds.id
)`),
			qb.Expr(`NOT EXISTS (
    SELECT 1 FROM fixtures f
    WHERE f.betting_round_id = betting_rounds.id
      AND f.status NOT IN ('FINISHED', 'FT', 'AET', 'PEN', 'POSTPONED', 'ABANDONED', 'CANCELLED')
)`),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list finished rounds query: %w", err)
	}

	var rows []bettingRoundTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rounds with all fixtures finished: %w", err)
	}

	return roundsToDomain(rows), nil
}

func (r *RoundRepository) ListInScoring(ctx context.Context) ([]round.BettingRound, error) {
	query, args, err := qb.Select("*").From("betting_rounds").
		Where(qb.Eq("status", round.StatusScoring)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list scoring rounds query: %w", err)
	}

	var rows []bettingRoundTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rounds in scoring: %w", err)
	}

	return roundsToDomain(rows), nil
}

func (r *RoundRepository) MarkScoring(ctx context.Context, id int64) (bool, error) {
	query, args, err := qb.Update("betting_rounds").
		Set("status", round.StatusScoring).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.In("status", []any{round.StatusOpen, round.StatusLocked}),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build mark round scoring query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark round scoring: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark round scoring rows affected: %w", err)
	}

	return affected > 0, nil
}

func roundToDomain(row bettingRoundTableModel) round.BettingRound {
	return round.BettingRound{
		ID:           row.ID,
		SeasonID:     row.SeasonID,
		Name:         row.Name,
		Status:       row.Status,
		IsBonusRound: row.IsBonusRound,
		ScoredAt:     row.ScoredAt,
	}
}

func roundsToDomain(rows []bettingRoundTableModel) []round.BettingRound {
	out := make([]round.BettingRound, 0, len(rows))
	for _, row := range rows {
		out = append(out, roundToDomain(row))
	}
	return out
}
