package usecase

import (
	"context"
	"fmt"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/round"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
)

// RoundDetectionResult lists the rounds handed to the scoring engine.
// Per-round failures are collected; they never abort the batch.
type RoundDetectionResult struct {
	RoundIDs []int64
	Errors   []string
}

type RoundCompletionService struct {
	roundRepo round.Repository
	logger    *logging.Logger
}

func NewRoundCompletionService(roundRepo round.Repository, logger *logging.Logger) *RoundCompletionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RoundCompletionService{
		roundRepo: roundRepo,
		logger:    logger,
	}
}

// DetectAndMarkCompletedRounds finds rounds whose fixtures have all
// finished, transitions them to scoring, and returns the set to score.
// A reconciliation sweep also picks up rounds already sitting in the
// scoring status from a previously failed pass, so a crashed run heals
// itself on the next invocation.
func (s *RoundCompletionService) DetectAndMarkCompletedRounds(ctx context.Context) (RoundDetectionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundCompletionService.DetectAndMarkCompletedRounds")
	defer span.End()

	var result RoundDetectionResult

	finished, err := s.roundRepo.ListWithAllFixturesFinished(ctx)
	if err != nil {
		return result, fmt.Errorf("list rounds with all fixtures finished: %w", err)
	}

	picked := make(map[int64]struct{}, len(finished))
	for _, item := range finished {
		ok, err := s.roundRepo.MarkScoring(ctx, item.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("mark round %d scoring: %v", item.ID, err))
			continue
		}
		if !ok {
			// Another invocation moved it along already.
			continue
		}
		picked[item.ID] = struct{}{}
		result.RoundIDs = append(result.RoundIDs, item.ID)
	}

	stuck, err := s.roundRepo.ListInScoring(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("reconciliation sweep: %v", err))
		return result, nil
	}
	for _, item := range stuck {
		if _, ok := picked[item.ID]; ok {
			continue
		}
		s.logger.InfoContext(ctx, "reconciliation sweep picked up round stuck in scoring", "round_id", item.ID)
		picked[item.ID] = struct{}{}
		result.RoundIDs = append(result.RoundIDs, item.ID)
	}

	return result, nil
}
