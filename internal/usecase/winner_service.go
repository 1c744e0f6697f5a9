package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/season"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/winner"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
)

// DetermineWinnersResult reports one main-competition winner
// determination. AlreadyDetermined means stored rows were returned
// verbatim and nothing was written.
type DetermineWinnersResult struct {
	SeasonID          int64
	Winners           []winner.SeasonWinner
	AlreadyDetermined bool
}

// BulkWinnersResult aggregates the fan-out over completed seasons.
type BulkWinnersResult struct {
	SeasonsProcessed       int
	TotalWinnersDetermined int
	Errors                 []string
}

type WinnerService struct {
	seasonRepo  season.Repository
	winnerRepo  winner.Repository
	standingsSv *StandingsService
	logger      *logging.Logger
	now         func() time.Time
}

func NewWinnerService(
	seasonRepo season.Repository,
	winnerRepo winner.Repository,
	standingsSv *StandingsService,
	logger *logging.Logger,
) *WinnerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &WinnerService{
		seasonRepo:  seasonRepo,
		winnerRepo:  winnerRepo,
		standingsSv: standingsSv,
		logger:      logger,
		now:         time.Now,
	}
}

// IsSeasonAlreadyDetermined checks for existing main-competition winner
// rows without touching the standings.
func (s *WinnerService) IsSeasonAlreadyDetermined(ctx context.Context, seasonID int64) (bool, error) {
	existing, err := s.winnerRepo.ListBySeasonAndType(ctx, seasonID, winner.CompetitionMain)
	if err != nil {
		return false, fmt.Errorf("list season winners: %w", err)
	}
	return len(existing) > 0, nil
}

// ListSeasonWinners returns the stored hall-of-fame rows for a season,
// main competition first, then the Last Round Special.
func (s *WinnerService) ListSeasonWinners(ctx context.Context, seasonID int64) ([]winner.SeasonWinner, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WinnerService.ListSeasonWinners")
	defer span.End()

	if _, exists, err := s.seasonRepo.GetByID(ctx, seasonID); err != nil {
		return nil, fmt.Errorf("get season: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: season=%d", ErrNotFound, seasonID)
	}

	main, err := s.winnerRepo.ListBySeasonAndType(ctx, seasonID, winner.CompetitionMain)
	if err != nil {
		return nil, fmt.Errorf("list main winners: %w", err)
	}
	special, err := s.winnerRepo.ListBySeasonAndType(ctx, seasonID, winner.CompetitionLastRoundSpecial)
	if err != nil {
		return nil, fmt.Errorf("list last round special winners: %w", err)
	}

	return append(main, special...), nil
}

// DetermineSeasonWinners records the rank-1 standings entries as the
// season's main-competition winners. The operation is idempotent: if
// winner rows already exist they are returned verbatim and no standings
// calculation or write happens. An N-way tie at rank 1 records one row
// per tied user, each flagged tied.
func (s *WinnerService) DetermineSeasonWinners(ctx context.Context, seasonID int64) (DetermineWinnersResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WinnerService.DetermineSeasonWinners")
	defer span.End()

	result := DetermineWinnersResult{SeasonID: seasonID}

	existing, err := s.winnerRepo.ListBySeasonAndType(ctx, seasonID, winner.CompetitionMain)
	if err != nil {
		return result, fmt.Errorf("list season winners: %w", err)
	}
	if len(existing) > 0 {
		result.Winners = existing
		result.AlreadyDetermined = true
		return result, nil
	}

	item, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return result, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return result, fmt.Errorf("%w: season=%d", ErrNotFound, seasonID)
	}

	entries, err := s.standingsSv.CalculateStandings(ctx)
	if err != nil {
		return result, fmt.Errorf("calculate standings for season=%d: %w", seasonID, err)
	}
	if len(entries) == 0 {
		s.logger.WarnContext(ctx, "no standings entries, season has no winners", "season_id", seasonID)
		return result, nil
	}

	createdAt := s.now().UTC()
	winners := make([]winner.SeasonWinner, 0, 1)
	for _, entry := range entries {
		if entry.Rank != 1 {
			break
		}
		winners = append(winners, winner.SeasonWinner{
			SeasonID:        seasonID,
			LeagueID:        item.CompetitionID,
			UserID:          entry.UserID,
			Username:        entry.Username,
			GamePoints:      entry.GamePoints,
			DynamicPoints:   entry.DynamicPoints,
			TotalPoints:     entry.CombinedTotal,
			CompetitionType: winner.CompetitionMain,
			IsTied:          entry.IsTied,
			CreatedAt:       createdAt,
		})
	}

	if err := s.winnerRepo.UpsertBatch(ctx, winners); err != nil {
		return result, fmt.Errorf("record season winners: %w", err)
	}
	if err := s.seasonRepo.StampWinnerDetermined(ctx, seasonID, createdAt); err != nil {
		return result, fmt.Errorf("stamp winner determined: %w", err)
	}

	s.logger.InfoContext(ctx, "season winners determined",
		"season_id", seasonID, "winners", len(winners), "tied", len(winners) > 1)

	result.Winners = winners
	return result, nil
}

// DetermineWinnersForCompletedSeasons fans out over every completed
// season still awaiting winner determination. Each season runs in its
// own goroutine; a panic or failure in one is captured as an error
// string and never takes down the rest.
func (s *WinnerService) DetermineWinnersForCompletedSeasons(ctx context.Context) (BulkWinnersResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WinnerService.DetermineWinnersForCompletedSeasons")
	defer span.End()

	var result BulkWinnersResult

	pending, err := s.seasonRepo.ListAwaitingWinnerDetermination(ctx)
	if err != nil {
		return result, fmt.Errorf("list seasons awaiting winner determination: %w", err)
	}
	if len(pending) == 0 {
		return result, nil
	}

	type outcome struct {
		seasonID int64
		winners  int
		err      error
	}
	outcomes := make([]outcome, len(pending))

	workers := pool.New().WithMaxGoroutines(4).WithContext(ctx)
	for idx, item := range pending {
		idx, seasonID := idx, item.ID
		workers.Go(func(ctx context.Context) error {
			defer func() {
				if r := recover(); r != nil {
					outcomes[idx] = outcome{seasonID: seasonID, err: fmt.Errorf("panic: %v", r)}
				}
			}()
			determined, err := s.DetermineSeasonWinners(ctx, seasonID)
			outcomes[idx] = outcome{seasonID: seasonID, winners: len(determined.Winners), err: err}
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	for _, o := range outcomes {
		result.SeasonsProcessed++
		if o.err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("season %d: %v", o.seasonID, o.err))
			continue
		}
		result.TotalWinnersDetermined += o.winners
	}

	return result, nil
}
