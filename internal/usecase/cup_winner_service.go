package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/cup"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/season"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/winner"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
)

// CupStandingsResult is the Last Round Special leaderboard for the
// current season.
type CupStandingsResult struct {
	SeasonID  int64
	Activated bool
	Rows      []cup.StandingRow
}

// CupWinnersResult reports one Last Round Special winner determination.
type CupWinnersResult struct {
	SeasonID          int64
	Winners           []winner.SeasonWinner
	AlreadyDetermined bool
}

type CupWinnerService struct {
	seasonRepo season.Repository
	cupRepo    cup.Repository
	winnerRepo winner.Repository
	logger     *logging.Logger
	now        func() time.Time
}

func NewCupWinnerService(
	seasonRepo season.Repository,
	cupRepo cup.Repository,
	winnerRepo winner.Repository,
	logger *logging.Logger,
) *CupWinnerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &CupWinnerService{
		seasonRepo: seasonRepo,
		cupRepo:    cupRepo,
		winnerRepo: winnerRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// CupStandings returns the Last Round Special leaderboard for the
// current season. The leaderboard exists even before activation so the
// page can show a zeroed table once the cup goes live mid-season.
func (s *CupWinnerService) CupStandings(ctx context.Context) (CupStandingsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CupWinnerService.CupStandings")
	defer span.End()

	current, exists, err := s.seasonRepo.GetCurrent(ctx)
	if err != nil {
		return CupStandingsResult{}, fmt.Errorf("get current season: %w", err)
	}
	if !exists {
		return CupStandingsResult{}, fmt.Errorf("%w: no current season", ErrNotFound)
	}

	rows, err := s.cupRepo.AggregatePointsBySeason(ctx, current.ID)
	if err != nil {
		return CupStandingsResult{}, fmt.Errorf("aggregate cup points for season=%d: %w", current.ID, err)
	}

	return CupStandingsResult{
		SeasonID:  current.ID,
		Activated: current.LastRoundSpecialActivated,
		Rows:      rows,
	}, nil
}

// DetermineCupWinnersForCompletedSeasons sweeps every completed season
// with an activated cup that still has no cup winner rows. Eligibility
// is re-queried from storage each pass, so a season whose determination
// failed transiently is picked up again on the next run.
func (s *CupWinnerService) DetermineCupWinnersForCompletedSeasons(ctx context.Context) (BulkWinnersResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CupWinnerService.DetermineCupWinnersForCompletedSeasons")
	defer span.End()

	var result BulkWinnersResult

	pending, err := s.seasonRepo.ListAwaitingCupWinnerDetermination(ctx)
	if err != nil {
		return result, fmt.Errorf("list seasons awaiting cup winners: %w", err)
	}

	for _, item := range pending {
		result.SeasonsProcessed++
		determined, err := s.DetermineCupWinners(ctx, item.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("season %d: %v", item.ID, err))
			continue
		}
		if !determined.AlreadyDetermined {
			result.TotalWinnersDetermined += len(determined.Winners)
		}
	}

	return result, nil
}

// DetermineCupWinners records the top Last Round Special scorers for a
// season. Idempotent the same way the main competition is: existing cup
// winner rows short-circuit and are returned as stored. Seasons where
// the cup never activated are a no-op. The season's winner stamp is not
// touched here; it belongs to the main competition.
func (s *CupWinnerService) DetermineCupWinners(ctx context.Context, seasonID int64) (CupWinnersResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CupWinnerService.DetermineCupWinners")
	defer span.End()

	result := CupWinnersResult{SeasonID: seasonID}

	existing, err := s.winnerRepo.ListBySeasonAndType(ctx, seasonID, winner.CompetitionLastRoundSpecial)
	if err != nil {
		return result, fmt.Errorf("list cup winners: %w", err)
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
	if !item.LastRoundSpecialActivated {
		s.logger.InfoContext(ctx, "cup never activated for season, no cup winners", "season_id", seasonID)
		return result, nil
	}

	rows, err := s.cupRepo.AggregatePointsBySeason(ctx, seasonID)
	if err != nil {
		return result, fmt.Errorf("aggregate cup points for season=%d: %w", seasonID, err)
	}
	if len(rows) == 0 {
		s.logger.WarnContext(ctx, "cup active but no cup points recorded", "season_id", seasonID)
		return result, nil
	}

	topPoints := rows[0].TotalPoints
	createdAt := s.now().UTC()
	winners := make([]winner.SeasonWinner, 0, 1)
	for _, row := range rows {
		if row.TotalPoints != topPoints {
			break
		}
		winners = append(winners, winner.SeasonWinner{
			SeasonID:        seasonID,
			LeagueID:        item.CompetitionID,
			UserID:          row.UserID,
			Username:        row.Username,
			TotalPoints:     row.TotalPoints,
			CompetitionType: winner.CompetitionLastRoundSpecial,
			CreatedAt:       createdAt,
		})
	}
	if len(winners) > 1 {
		for idx := range winners {
			winners[idx].IsTied = true
		}
	}

	if err := s.winnerRepo.UpsertBatch(ctx, winners); err != nil {
		return result, fmt.Errorf("record cup winners: %w", err)
	}

	s.logger.InfoContext(ctx, "cup winners determined",
		"season_id", seasonID, "winners", len(winners), "tied", len(winners) > 1)

	result.Winners = winners
	return result, nil
}
