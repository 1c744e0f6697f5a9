package cup

import (
	"time"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/fixture"
)

// StandingRow is one user's accumulated Last Round Special points for a
// season, read from the cup-specific points table.
type StandingRow struct {
	SeasonID    int64
	UserID      string
	Username    string
	TotalPoints int
}

// FixtureDataResult is the per-team remaining-games snapshot the
// activation condition is computed from.
type FixtureDataResult struct {
	SeasonID                  int64
	TeamsTotal                int
	TeamsWithFiveOrFewerGames int
	Percentage                float64
	Teams                     []fixture.TeamRemainingGames
}

// ActivationStatus reports whether the cup is active for a season.
type ActivationStatus struct {
	Activated   bool
	ActivatedAt *time.Time
}

// AuditRecord captures one full activation-detection run for diagnostic
// replay. Persisted on every invocation, action taken or not.
type AuditRecord struct {
	SessionID       string
	SeasonID        int64
	FixtureSnapshot FixtureDataResult
	ConditionMet    bool
	Reasoning       string
	StatusCheck     ActivationStatus
	Decision        string
	ActionTaken     string
	DurationMs      int64
	Errors          []string
	CreatedAt       time.Time
}

const (
	DecisionAlreadyActive    = "already_active"
	DecisionConditionsNotMet = "conditions_not_met"
	DecisionActivate         = "activate"
)
