package postgres

import "time"

type seasonTableModel struct {
	ID                          int64      `db:"id"`
	CompetitionID               int64      `db:"competition_id"`
	Name                        string     `db:"name"`
	IsCurrent                   bool       `db:"is_current"`
	BonusModeActive             bool       `db:"bonus_mode_active"`
	CompletedAt                 *time.Time `db:"completed_at"`
	WinnerDeterminedAt          *time.Time `db:"winner_determined_at"`
	LastRoundSpecialActivated   bool       `db:"last_round_special_activated"`
	LastRoundSpecialActivatedAt *time.Time `db:"last_round_special_activated_at"`
	CreatedAt                   time.Time  `db:"created_at"`
	UpdatedAt                   time.Time  `db:"updated_at"`
}
