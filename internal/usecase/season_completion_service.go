package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/season"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
)

type SeasonDetectionResult struct {
	CompletedSeasonIDs []int64
	Errors             []string
}

type SeasonCompletionService struct {
	seasonRepo season.Repository
	logger     *logging.Logger
	now        func() time.Time
}

func NewSeasonCompletionService(seasonRepo season.Repository, logger *logging.Logger) *SeasonCompletionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SeasonCompletionService{
		seasonRepo: seasonRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// DetectAndMarkCompletedSeasons stamps completed_at on every season whose
// rounds are all scored. Partial success is expected: one season failing
// is recorded and the rest proceed.
func (s *SeasonCompletionService) DetectAndMarkCompletedSeasons(ctx context.Context) (SeasonDetectionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonCompletionService.DetectAndMarkCompletedSeasons")
	defer span.End()

	var result SeasonDetectionResult

	eligible, err := s.seasonRepo.ListFullyScoredUncompleted(ctx)
	if err != nil {
		return result, fmt.Errorf("list fully scored uncompleted seasons: %w", err)
	}

	completedAt := s.now().UTC()
	for _, item := range eligible {
		ok, err := s.seasonRepo.MarkCompleted(ctx, item.ID, completedAt)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("mark season %d completed: %v", item.ID, err))
			continue
		}
		if !ok {
			// A concurrent invocation already completed it; not an error.
			continue
		}
		s.logger.InfoContext(ctx, "season marked completed", "season_id", item.ID)
		result.CompletedSeasonIDs = append(result.CompletedSeasonIDs, item.ID)
	}

	return result, nil
}
