package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/cup"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/fixture"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/season"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/cache"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/id"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
)

// DefaultActivationThresholdPercent is the share of teams that must have
// five or fewer games remaining before the Last Round Special activates.
const DefaultActivationThresholdPercent = 60.0

const maxGamesForActivation = 5

// ActivationCheckRequest tunes one activation-detection run. A zero
// ThresholdPercent means the default.
type ActivationCheckRequest struct {
	ThresholdPercent float64 `validate:"gte=0,lte=100"`
}

// ActivationCheckResult is the outcome of one detection run, mirroring
// the persisted audit record.
type ActivationCheckResult struct {
	SessionID       string
	SeasonID        int64
	Decision        string
	ActionTaken     string
	ConditionMet    bool
	Reasoning       string
	FixtureSnapshot cup.FixtureDataResult
	Activated       bool
	// WasAlreadyActivated reports that the cup was active before this
	// run took any action, whether from an earlier pass or a concurrent
	// one that won the activation race.
	WasAlreadyActivated bool
	DurationMs          int64
	Errors              []string
}

type CupActivationService struct {
	seasonRepo  season.Repository
	fixtureRepo fixture.Repository
	auditRepo   cup.AuditRepository
	cacheStore  *cache.Store
	idGen       id.Generator
	validate    *validator.Validate
	logger      *logging.Logger
	now         func() time.Time
}

func NewCupActivationService(
	seasonRepo season.Repository,
	fixtureRepo fixture.Repository,
	auditRepo cup.AuditRepository,
	cacheStore *cache.Store,
	idGen id.Generator,
	logger *logging.Logger,
) *CupActivationService {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewRandomGenerator()
	}
	return &CupActivationService{
		seasonRepo:  seasonRepo,
		fixtureRepo: fixtureRepo,
		auditRepo:   auditRepo,
		cacheStore:  cacheStore,
		idGen:       idGen,
		validate:    validator.New(),
		logger:      logger,
		now:         time.Now,
	}
}

// CheckAndActivate runs one activation-detection pass for the current
// season: snapshot remaining games per team, evaluate the threshold
// condition, and activate the Last Round Special when it is met and not
// already active. Losing the activation race to a concurrent run is a
// success, not an error. Every run persists an audit record, whatever
// the decision.
func (s *CupActivationService) CheckAndActivate(ctx context.Context, req ActivationCheckRequest) (ActivationCheckResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CupActivationService.CheckAndActivate")
	defer span.End()

	started := s.now()
	var result ActivationCheckResult

	if err := s.validate.Struct(req); err != nil {
		return result, fmt.Errorf("%w: threshold must be between 0 and 100: %v", ErrInvalidInput, err)
	}
	threshold := req.ThresholdPercent
	if threshold == 0 {
		threshold = DefaultActivationThresholdPercent
	}

	sessionID, err := s.idGen.NewID()
	if err != nil {
		return result, fmt.Errorf("generate session id: %w", err)
	}
	result.SessionID = sessionID

	currentSeason, exists, err := s.seasonRepo.GetCurrent(ctx)
	if err != nil {
		return result, fmt.Errorf("get current season: %w", err)
	}
	if !exists {
		return result, fmt.Errorf("%w: no current season", ErrNotFound)
	}
	result.SeasonID = currentSeason.ID

	snapshot, err := s.snapshotRemainingGames(ctx, currentSeason.ID)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		result.DurationMs = s.sinceMs(started)
		s.persistAudit(ctx, currentSeason, result, threshold)
		return result, fmt.Errorf("snapshot remaining games for season=%d: %w", currentSeason.ID, err)
	}
	result.FixtureSnapshot = snapshot
	result.ConditionMet = snapshot.TeamsTotal > 0 && snapshot.Percentage >= threshold
	result.Reasoning = fmt.Sprintf("%d of %d teams (%.1f%%) have %d or fewer games remaining, threshold %.1f%%",
		snapshot.TeamsWithFiveOrFewerGames, snapshot.TeamsTotal, snapshot.Percentage,
		maxGamesForActivation, threshold)

	switch {
	case currentSeason.LastRoundSpecialActivated:
		result.Decision = cup.DecisionAlreadyActive
		result.ActionTaken = "none"
		result.Activated = true
		result.WasAlreadyActivated = true
	case !result.ConditionMet:
		result.Decision = cup.DecisionConditionsNotMet
		result.ActionTaken = "none"
	default:
		result.Decision = cup.DecisionActivate
		alreadyActivated, err := s.seasonRepo.ActivateLastRoundSpecial(ctx, currentSeason.ID, s.now().UTC())
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			result.DurationMs = s.sinceMs(started)
			s.persistAudit(ctx, currentSeason, result, threshold)
			return result, fmt.Errorf("activate last round special for season=%d: %w", currentSeason.ID, err)
		}
		result.Activated = true
		if alreadyActivated {
			// A concurrent run won the race; the cup is active either way.
			result.ActionTaken = "activation_raced"
			result.WasAlreadyActivated = true
			s.logger.InfoContext(ctx, "cup activation raced by concurrent run", "season_id", currentSeason.ID)
		} else {
			result.ActionTaken = "activated"
			s.logger.InfoContext(ctx, "last round special activated",
				"season_id", currentSeason.ID, "percentage", snapshot.Percentage, "threshold", threshold)
			s.invalidateStandingsViews(ctx)
		}
	}

	result.DurationMs = s.sinceMs(started)
	s.persistAudit(ctx, currentSeason, result, threshold)

	return result, nil
}

func (s *CupActivationService) snapshotRemainingGames(ctx context.Context, seasonID int64) (cup.FixtureDataResult, error) {
	teams, err := s.fixtureRepo.ListRemainingGamesBySeason(ctx, seasonID)
	if err != nil {
		return cup.FixtureDataResult{}, err
	}

	snapshot := cup.FixtureDataResult{
		SeasonID:   seasonID,
		TeamsTotal: len(teams),
		Teams:      teams,
	}
	for _, team := range teams {
		if team.RemainingGames <= maxGamesForActivation {
			snapshot.TeamsWithFiveOrFewerGames++
		}
	}
	if snapshot.TeamsTotal > 0 {
		snapshot.Percentage = float64(snapshot.TeamsWithFiveOrFewerGames) / float64(snapshot.TeamsTotal) * 100
	}

	return snapshot, nil
}

// persistAudit records the run for diagnostic replay. Audit storage
// failing never fails the activation itself.
func (s *CupActivationService) persistAudit(ctx context.Context, current season.Season, result ActivationCheckResult, threshold float64) {
	if s.auditRepo == nil {
		return
	}

	record := cup.AuditRecord{
		SessionID:       result.SessionID,
		SeasonID:        current.ID,
		FixtureSnapshot: result.FixtureSnapshot,
		ConditionMet:    result.ConditionMet,
		Reasoning:       result.Reasoning,
		StatusCheck: cup.ActivationStatus{
			Activated:   current.LastRoundSpecialActivated,
			ActivatedAt: current.LastRoundSpecialActivatedAt,
		},
		Decision:    result.Decision,
		ActionTaken: result.ActionTaken,
		DurationMs:  result.DurationMs,
		Errors:      result.Errors,
		CreatedAt:   s.now().UTC(),
	}
	if record.Reasoning == "" {
		record.Reasoning = fmt.Sprintf("run aborted before condition evaluation, threshold %.1f%%", threshold)
	}

	if err := s.auditRepo.Insert(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "persist cup activation audit failed",
			"session_id", result.SessionID, "error", err)
	}
}

func (s *CupActivationService) invalidateStandingsViews(ctx context.Context) {
	if s.cacheStore == nil {
		return
	}
	s.cacheStore.DeletePrefix(ctx, "standings:")
	s.cacheStore.DeletePrefix(ctx, "cup:")
}

func (s *CupActivationService) sinceMs(started time.Time) int64 {
	return s.now().Sub(started).Milliseconds()
}
