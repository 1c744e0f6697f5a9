package postgres

import (
	"database/sql"
	"time"
)

type fixtureTableModel struct {
	ID         int64          `db:"id"`
	SeasonID   int64          `db:"season_id"`
	RoundID    sql.NullInt64  `db:"betting_round_id"`
	HomeTeamID int64          `db:"home_team_id"`
	AwayTeamID int64          `db:"away_team_id"`
	HomeTeam   string         `db:"home_team"`
	AwayTeam   string         `db:"away_team"`
	KickoffAt  time.Time      `db:"kickoff_at"`
	Status     string         `db:"status"`
	HomeScore  sql.NullInt64  `db:"home_score"`
	AwayScore  sql.NullInt64  `db:"away_score"`
	Result     sql.NullString `db:"result"`
	FinishedAt *time.Time     `db:"finished_at"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

type teamRemainingGamesRow struct {
	TeamID         int64  `db:"team_id"`
	TeamName       string `db:"team_name"`
	RemainingGames int    `db:"remaining_games"`
}
