package postgres

import "time"

type seasonWinnerTableModel struct {
	ID              int64     `db:"id"`
	SeasonID        int64     `db:"season_id"`
	LeagueID        int64     `db:"league_id"`
	UserID          string    `db:"user_id"`
	Username        string    `db:"username"`
	GamePoints      int       `db:"game_points"`
	DynamicPoints   int       `db:"dynamic_points"`
	TotalPoints     int       `db:"total_points"`
	CompetitionType string    `db:"competition_type"`
	IsTied          bool      `db:"is_tied"`
	CreatedAt       time.Time `db:"created_at"`
}

type seasonWinnerInsertModel struct {
	SeasonID        int64     `db:"season_id"`
	LeagueID        int64     `db:"league_id"`
	UserID          string    `db:"user_id"`
	Username        string    `db:"username"`
	GamePoints      int       `db:"game_points"`
	DynamicPoints   int       `db:"dynamic_points"`
	TotalPoints     int       `db:"total_points"`
	CompetitionType string    `db:"competition_type"`
	IsTied          bool      `db:"is_tied"`
	CreatedAt       time.Time `db:"created_at"`
}
