package postgres

import "time"

type bettingRoundTableModel struct {
	ID           int64      `db:"id"`
	SeasonID     int64      `db:"season_id"`
	Name         string     `db:"name"`
	Status       string     `db:"status"`
	IsBonusRound bool       `db:"is_bonus_round"`
	ScoredAt     *time.Time `db:"scored_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}
