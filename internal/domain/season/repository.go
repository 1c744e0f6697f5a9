package season

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (Season, bool, error)
	GetCurrent(ctx context.Context) (Season, bool, error)

	// ListFullyScoredUncompleted returns seasons whose rounds are all
	// scored but which have no completion timestamp yet.
	ListFullyScoredUncompleted(ctx context.Context) ([]Season, error)

	// ListAwaitingWinnerDetermination returns completed seasons without
	// a winner_determined_at stamp.
	ListAwaitingWinnerDetermination(ctx context.Context) ([]Season, error)

	// ListAwaitingCupWinnerDetermination returns completed seasons whose
	// Last Round Special activated but which have no cup winner rows yet.
	ListAwaitingCupWinnerDetermination(ctx context.Context) ([]Season, error)

	// MarkCompleted stamps completed_at. Returns false when another
	// invocation already completed the season.
	MarkCompleted(ctx context.Context, id int64, completedAt time.Time) (bool, error)

	StampWinnerDetermined(ctx context.Context, id int64, determinedAt time.Time) error

	// ActivateLastRoundSpecial flips the cup activation flag. When a
	// concurrent invocation won the race the storage layer reports
	// alreadyActivated=true and no second write happens.
	ActivateLastRoundSpecial(ctx context.Context, id int64, activatedAt time.Time) (alreadyActivated bool, err error)
}
