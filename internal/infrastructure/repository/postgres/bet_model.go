package postgres

import (
	"database/sql"
	"time"
)

type userBetTableModel struct {
	ID            int64         `db:"id"`
	UserID        string        `db:"user_id"`
	FixtureID     int64         `db:"fixture_id"`
	RoundID       int64         `db:"betting_round_id"`
	Prediction    string        `db:"prediction"`
	PointsAwarded sql.NullInt64 `db:"points_awarded"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}
