package winner

import "time"

const (
	CompetitionMain             = "main"
	CompetitionLastRoundSpecial = "last_round_special"
)

// SeasonWinner is one hall-of-fame row. Unique per
// (season, user, competition type); ties at rank 1 produce one row per
// tied user, each flagged IsTied.
type SeasonWinner struct {
	SeasonID        int64
	LeagueID        int64
	UserID          string
	Username        string
	GamePoints      int
	DynamicPoints   int
	TotalPoints     int
	CompetitionType string
	IsTied          bool
	CreatedAt       time.Time
}
