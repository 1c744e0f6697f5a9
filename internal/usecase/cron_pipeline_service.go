package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/cache"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/resilience"
)

const (
	processRoundsFlightKey    = "cron:process-rounds"
	seasonCompletionFlightKey = "cron:season-completion"

	scoringWorkers = 4
)

// SummaryMailer delivers the end-of-season summary. Delivery is fire and
// forget; the pipeline never waits on it.
type SummaryMailer interface {
	SendSeasonSummary(ctx context.Context, seasonID int64, winners int) error
}

// NopSummaryMailer drops summaries. Used when email is not configured.
type NopSummaryMailer struct{}

func (NopSummaryMailer) SendSeasonSummary(context.Context, int64, int) error { return nil }

// ProcessRoundsResult summarizes one scoring pass.
type ProcessRoundsResult struct {
	RoundsDetected int
	RoundsScored   int
	RoundsSkipped  int
	Deduplicated   bool
	Errors         []string
}

// SeasonCompletionResult summarizes one completion-plus-winners pass.
type SeasonCompletionResult struct {
	CompletedSeasonIDs     []int64
	SeasonsProcessed       int
	TotalWinnersDetermined int
	Deduplicated           bool
	Errors                 []string
}

// CronPipelineService orchestrates the scheduled passes behind the cron
// endpoints. Overlapping invocations of the same pass collapse into one
// run via single flight.
type CronPipelineService struct {
	roundCompletion  *RoundCompletionService
	scoring          *ScoringService
	seasonCompletion *SeasonCompletionService
	winners          *WinnerService
	cupWinners       *CupWinnerService
	mailer           SummaryMailer
	cacheStore       *cache.Store
	flight           *resilience.SingleFlight
	logger           *logging.Logger
}

func NewCronPipelineService(
	roundCompletion *RoundCompletionService,
	scoring *ScoringService,
	seasonCompletion *SeasonCompletionService,
	winners *WinnerService,
	cupWinners *CupWinnerService,
	mailer SummaryMailer,
	cacheStore *cache.Store,
	logger *logging.Logger,
) *CronPipelineService {
	if mailer == nil {
		mailer = NopSummaryMailer{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CronPipelineService{
		roundCompletion:  roundCompletion,
		scoring:          scoring,
		seasonCompletion: seasonCompletion,
		winners:          winners,
		cupWinners:       cupWinners,
		mailer:           mailer,
		cacheStore:       cacheStore,
		flight:           &resilience.SingleFlight{},
		logger:           logger,
	}
}

// ProcessRounds detects rounds whose fixtures have all finished and
// scores them on a bounded worker pool. One round failing never stops
// the others; its error is collected into the summary.
func (s *CronPipelineService) ProcessRounds(ctx context.Context) (ProcessRoundsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CronPipelineService.ProcessRounds")
	defer span.End()

	val, err, shared := s.flight.Do(processRoundsFlightKey, func() (any, error) {
		return s.processRounds(ctx)
	})
	result, _ := val.(ProcessRoundsResult)
	result.Deduplicated = shared
	return result, err
}

func (s *CronPipelineService) processRounds(ctx context.Context) (ProcessRoundsResult, error) {
	var result ProcessRoundsResult

	detected, err := s.roundCompletion.DetectAndMarkCompletedRounds(ctx)
	if err != nil {
		return result, fmt.Errorf("detect completed rounds: %w", err)
	}
	result.RoundsDetected = len(detected.RoundIDs)
	result.Errors = append(result.Errors, detected.Errors...)

	if len(detected.RoundIDs) == 0 {
		return result, nil
	}

	workerPool, err := ants.NewPool(scoringWorkers)
	if err != nil {
		return result, fmt.Errorf("create scoring worker pool: %w", err)
	}
	defer workerPool.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, roundID := range detected.RoundIDs {
		roundID := roundID
		wg.Add(1)
		task := func() {
			defer wg.Done()
			scored, err := s.scoring.ScoreRound(ctx, roundID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("score round %d: %v", roundID, err))
				return
			}
			result.Errors = append(result.Errors, scored.Errors...)
			switch {
			case scored.AlreadyScored:
				result.RoundsSkipped++
			case scored.Success:
				result.RoundsScored++
			default:
				result.RoundsSkipped++
			}
		}
		if err := workerPool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			result.Errors = append(result.Errors, fmt.Sprintf("submit round %d: %v", roundID, err))
			mu.Unlock()
		}
	}
	wg.Wait()

	if result.RoundsScored > 0 {
		s.invalidateStandingsViews(ctx)
	}

	s.logger.InfoContext(ctx, "process rounds pass finished",
		"detected", result.RoundsDetected, "scored", result.RoundsScored,
		"skipped", result.RoundsSkipped, "errors", len(result.Errors))

	return result, nil
}

// RunSeasonCompletion marks fully scored seasons completed, then
// determines winners for every completed season still missing them. A
// summary email per completed season goes out in the background.
func (s *CronPipelineService) RunSeasonCompletion(ctx context.Context) (SeasonCompletionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CronPipelineService.RunSeasonCompletion")
	defer span.End()

	val, err, shared := s.flight.Do(seasonCompletionFlightKey, func() (any, error) {
		return s.runSeasonCompletion(ctx)
	})
	result, _ := val.(SeasonCompletionResult)
	result.Deduplicated = shared
	return result, err
}

func (s *CronPipelineService) runSeasonCompletion(ctx context.Context) (SeasonCompletionResult, error) {
	var result SeasonCompletionResult

	detected, err := s.seasonCompletion.DetectAndMarkCompletedSeasons(ctx)
	if err != nil {
		return result, fmt.Errorf("detect completed seasons: %w", err)
	}
	result.CompletedSeasonIDs = detected.CompletedSeasonIDs
	result.Errors = append(result.Errors, detected.Errors...)

	determined, err := s.winners.DetermineWinnersForCompletedSeasons(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("determine winners: %v", err))
		return result, nil
	}
	result.SeasonsProcessed = determined.SeasonsProcessed
	result.TotalWinnersDetermined = determined.TotalWinnersDetermined
	result.Errors = append(result.Errors, determined.Errors...)

	// Cup winners run their own eligibility sweep rather than riding on
	// the seasons completed in this pass, so a determination that failed
	// here is retried on the next invocation.
	if s.cupWinners != nil {
		cupDetermined, err := s.cupWinners.DetermineCupWinnersForCompletedSeasons(ctx)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("determine cup winners: %v", err))
		} else {
			result.TotalWinnersDetermined += cupDetermined.TotalWinnersDetermined
			result.Errors = append(result.Errors, cupDetermined.Errors...)
		}
	}

	if result.TotalWinnersDetermined > 0 {
		s.invalidateStandingsViews(ctx)
	}

	for _, seasonID := range detected.CompletedSeasonIDs {
		seasonID := seasonID
		go func() {
			sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
			defer cancel()
			if err := s.mailer.SendSeasonSummary(sendCtx, seasonID, result.TotalWinnersDetermined); err != nil {
				s.logger.WarnContext(sendCtx, "season summary email failed",
					"season_id", seasonID, "error", err)
			}
		}()
	}

	return result, nil
}

func (s *CronPipelineService) invalidateStandingsViews(ctx context.Context) {
	if s.cacheStore == nil {
		return
	}
	s.cacheStore.DeletePrefix(ctx, "standings:")
	s.cacheStore.DeletePrefix(ctx, "hall-of-fame:")
	s.cacheStore.DeletePrefix(ctx, "cup:")
}
