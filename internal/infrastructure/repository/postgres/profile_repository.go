package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/profile"
	qb "github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/querybuilder"
)

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type profileTableModel struct {
	ID       string `db:"id"`
	FullName string `db:"full_name"`
}

func (r *ProfileRepository) ListByIDs(ctx context.Context, ids []string) ([]profile.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}

	query, args, err := qb.Select("id", "full_name").From("profiles").
		Where(qb.In("id", values)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list profiles query: %w", err)
	}

	var rows []profileTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	out := make([]profile.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, profile.Profile{
			ID:       row.ID,
			FullName: row.FullName,
		})
	}

	return out, nil
}
