package fixture

import (
	"strings"
	"time"
)

const (
	StatusNotStarted = "NOT_STARTED"
	StatusLive       = "LIVE"
	StatusFinished   = "FINISHED"
	StatusPostponed  = "POSTPONED"
	StatusAbandoned  = "ABANDONED"
)

const (
	ResultHome = "home"
	ResultDraw = "draw"
	ResultAway = "away"
)

// Fixture represents one scheduled match.
type Fixture struct {
	ID         int64
	SeasonID   int64
	HomeTeamID int64
	AwayTeamID int64
	HomeTeam   string
	AwayTeam   string
	KickoffAt  time.Time
	Status     string
	HomeScore  *int
	AwayScore  *int
	Result     string
	FinishedAt *time.Time
}

// TeamRemainingGames is one team's count of not-yet-finished fixtures
// in a season.
type TeamRemainingGames struct {
	TeamID         int64
	TeamName       string
	RemainingGames int
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusNotStarted
	}
	return status
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

func IsVoidStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusPostponed, StatusAbandoned, "CANCELLED":
		return true
	default:
		return false
	}
}

// SettledResult returns the canonical result of a finished fixture.
// The stored result column wins; when it is empty the result is derived
// from the final score. ok is false while the fixture has no settled
// outcome yet.
func (f Fixture) SettledResult() (string, bool) {
	if !IsFinishedStatus(f.Status) {
		return "", false
	}
	switch f.Result {
	case ResultHome, ResultDraw, ResultAway:
		return f.Result, true
	}
	if f.HomeScore == nil || f.AwayScore == nil {
		return "", false
	}
	return ResultFromScore(*f.HomeScore, *f.AwayScore), true
}

func ResultFromScore(homeScore, awayScore int) string {
	switch {
	case homeScore > awayScore:
		return ResultHome
	case homeScore < awayScore:
		return ResultAway
	default:
		return ResultDraw
	}
}
