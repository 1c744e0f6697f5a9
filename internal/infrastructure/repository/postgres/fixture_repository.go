package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/fixture"
	qb "github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/querybuilder"
)

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) ListByRound(ctx context.Context, roundID int64) ([]fixture.Fixture, error) {
	query, args, err := qb.Select("*").From("fixtures").
		Where(qb.Eq("betting_round_id", roundID)).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures by round query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures by round: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixture.Fixture{
			ID:         row.ID,
			SeasonID:   row.SeasonID,
			HomeTeamID: row.HomeTeamID,
			AwayTeamID: row.AwayTeamID,
			HomeTeam:   row.HomeTeam,
			AwayTeam:   row.AwayTeam,
			KickoffAt:  row.KickoffAt,
			Status:     fixture.NormalizeStatus(row.Status),
			HomeScore:  nullInt(row.HomeScore),
			AwayScore:  nullInt(row.AwayScore),
			Result:     row.Result.String,
			FinishedAt: row.FinishedAt,
		})
	}

	return out, nil
}

// remainingGamesQuery counts not-yet-played fixtures per team over both
// the home and away side of the schedule. Finished and voided fixtures
// both count as played, so a team whose season is over shows zero.
const remainingGamesQuery = `
SELECT team_id,
       MAX(team_name) AS team_name,
       COUNT(*) FILTER (
           WHERE status NOT IN ('FINISHED', 'FT', 'AET', 'PEN', 'POSTPONED', 'ABANDONED', 'CANCELLED')
       ) AS remaining_games
FROM (
    SELECT home_team_id AS team_id, home_team AS team_name, status FROM fixtures WHERE season_id = $1
    UNION ALL
    SELECT away_team_id AS team_id, away_team AS team_name, status FROM fixtures WHERE season_id = $1
) schedule
GROUP BY team_id
ORDER BY team_name, team_id`

func (r *FixtureRepository) ListRemainingGamesBySeason(ctx context.Context, seasonID int64) ([]fixture.TeamRemainingGames, error) {
	var rows []teamRemainingGamesRow
	if err := r.db.SelectContext(ctx, &rows, remainingGamesQuery, seasonID); err != nil {
		return nil, fmt.Errorf("select remaining games by season: %w", err)
	}

	out := make([]fixture.TeamRemainingGames, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixture.TeamRemainingGames{
			TeamID:         row.TeamID,
			TeamName:       row.TeamName,
			RemainingGames: row.RemainingGames,
		})
	}

	return out, nil
}
