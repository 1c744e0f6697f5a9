package round

import "time"

const (
	StatusOpen    = "open"
	StatusLocked  = "locked"
	StatusScoring = "scoring"
	StatusScored  = "scored"
)

// BettingRound is a named group of fixtures open for prediction together.
type BettingRound struct {
	ID           int64
	SeasonID     int64
	Name         string
	Status       string
	IsBonusRound bool
	ScoredAt     *time.Time
}

func (r BettingRound) IsScored() bool {
	return r.Status == StatusScored
}
