package season

import "time"

// Season covers one competition year. CompletedAt is stamped once every
// round is scored; WinnerDeterminedAt once winners are recorded.
type Season struct {
	ID                          int64
	CompetitionID               int64
	Name                        string
	IsCurrent                   bool
	BonusModeActive             bool
	CompletedAt                 *time.Time
	WinnerDeterminedAt          *time.Time
	LastRoundSpecialActivated   bool
	LastRoundSpecialActivatedAt *time.Time
}
