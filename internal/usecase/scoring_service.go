package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/bet"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/fixture"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/round"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/season"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
)

const (
	basePointsPerCorrectBet = 1
	bonusMultiplier         = 2
)

// ScoringConfig carries the bonus flags that decide the round's
// multiplier. It is resolved once per round and passed down explicitly so
// the award computation itself stays pure.
type ScoringConfig struct {
	IsBonusRound      bool
	GlobalBonusActive bool
}

func (c ScoringConfig) bonusActive() bool {
	return c.IsBonusRound || c.GlobalBonusActive
}

// ScoreRoundResult reports one scoring pass over a round.
type ScoreRoundResult struct {
	RoundID           int64
	Success           bool
	AlreadyScored     bool
	BetsProcessed     int
	BetsUpdated       int
	IncompleteScoring bool
	SkippedFixtureIDs []int64
	Errors            []string
}

type ScoringService struct {
	roundRepo   round.Repository
	fixtureRepo fixture.Repository
	betRepo     bet.Repository
	seasonRepo  season.Repository
	logger      *logging.Logger
	now         func() time.Time
}

func NewScoringService(
	roundRepo round.Repository,
	fixtureRepo fixture.Repository,
	betRepo bet.Repository,
	seasonRepo season.Repository,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{
		roundRepo:   roundRepo,
		fixtureRepo: fixtureRepo,
		betRepo:     betRepo,
		seasonRepo:  seasonRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// ScoreRound evaluates every bet in a round against the final fixture
// results and commits all awards plus the round's scored status in one
// transaction. Rounds already scored are a no-op. Fixtures that may
// still settle (live, rescheduled) defer the whole round to a later
// pass; voided fixtures will never settle, so their bets are skipped
// and the round completes without them, flagged incomplete.
func (s *ScoringService) ScoreRound(ctx context.Context, roundID int64) (ScoreRoundResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreRound")
	defer span.End()

	result := ScoreRoundResult{RoundID: roundID}

	item, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return result, fmt.Errorf("get betting round: %w", err)
	}
	if !exists {
		return result, fmt.Errorf("%w: betting round=%d", ErrNotFound, roundID)
	}
	if item.IsScored() {
		result.Success = true
		result.AlreadyScored = true
		return result, nil
	}

	currentSeason, seasonExists, err := s.seasonRepo.GetByID(ctx, item.SeasonID)
	if err != nil {
		return result, fmt.Errorf("get season for round=%d: %w", roundID, err)
	}

	cfg := ScoringConfig{IsBonusRound: item.IsBonusRound}
	if seasonExists {
		cfg.GlobalBonusActive = currentSeason.BonusModeActive
	}

	fixtures, err := s.fixtureRepo.ListByRound(ctx, roundID)
	if err != nil {
		return result, fmt.Errorf("list fixtures for round=%d: %w", roundID, err)
	}

	if pending := pendingFixtureIDs(fixtures); len(pending) > 0 {
		// Scoring now would stamp the round scored and strand these
		// fixtures' bets. Leave the round in scoring and retry once the
		// results land.
		result.IncompleteScoring = true
		result.SkippedFixtureIDs = pending
		result.Errors = append(result.Errors,
			fmt.Sprintf("round %d has %d fixtures still awaiting a result", roundID, len(pending)))
		s.logger.InfoContext(ctx, "round deferred until its fixtures settle",
			"round_id", roundID, "pending_fixtures", len(pending))
		return result, nil
	}

	bets, err := s.betRepo.ListByRound(ctx, roundID)
	if err != nil {
		return result, fmt.Errorf("list bets for round=%d: %w", roundID, err)
	}
	result.BetsProcessed = len(bets)

	awards, skipped := computeAwards(fixtures, bets, cfg)
	result.SkippedFixtureIDs = skipped
	result.IncompleteScoring = len(skipped) > 0

	for _, fixtureID := range skipped {
		s.logger.WarnContext(ctx, "fixture was voided, skipping its bets",
			"round_id", roundID, "fixture_id", fixtureID)
	}

	if len(awards) == 0 && result.IncompleteScoring {
		// Every fixture was voided; nothing can ever be judged, so the
		// round stays unscored and surfaces in the pass errors.
		result.Errors = append(result.Errors, fmt.Sprintf("round %d has no settled fixtures to score", roundID))
		return result, nil
	}

	if err := s.betRepo.UpdatePointsBatch(ctx, roundID, awards, s.now().UTC()); err != nil {
		return result, fmt.Errorf("batch update points for round=%d: %w", roundID, err)
	}

	result.BetsUpdated = len(awards)
	result.Success = true
	return result, nil
}

// pendingFixtureIDs lists unsettled fixtures that are not voided, so a
// result may still arrive for them.
func pendingFixtureIDs(fixtures []fixture.Fixture) []int64 {
	var pending []int64
	for _, f := range fixtures {
		if _, ok := f.SettledResult(); ok {
			continue
		}
		if !fixture.IsVoidStatus(f.Status) {
			pending = append(pending, f.ID)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i] < pending[j] })
	return pending
}

// computeAwards is the pure scoring core: it judges every bet against its
// fixture's settled result and applies the effective multiplier. The
// round/global bonus doubles everything and suppresses the perfect-round
// bonus entirely; otherwise a user whose own judged bets are all correct
// gets the personal doubling.
func computeAwards(fixtures []fixture.Fixture, bets []bet.UserBet, cfg ScoringConfig) ([]bet.PointsAward, []int64) {
	resultByFixture := make(map[int64]string, len(fixtures))
	var skipped []int64
	for _, f := range fixtures {
		settled, ok := f.SettledResult()
		if !ok {
			skipped = append(skipped, f.ID)
			continue
		}
		resultByFixture[f.ID] = settled
	}
	sort.Slice(skipped, func(i, j int) bool { return skipped[i] < skipped[j] })

	type judged struct {
		betID   int64
		correct bool
		userID  string
	}
	judgedBets := make([]judged, 0, len(bets))
	for _, b := range bets {
		settled, ok := resultByFixture[b.FixtureID]
		if !ok {
			continue
		}
		judgedBets = append(judgedBets, judged{
			betID:   b.ID,
			correct: b.Prediction == settled,
			userID:  b.UserID,
		})
	}

	// Perfect-round bonus is judged over each user's own submitted bets
	// only; partial participation still qualifies. A bonus round (or the
	// season-wide bonus mode) suppresses it entirely.
	perfectByUser := make(map[string]bool)
	if !cfg.bonusActive() {
		for _, jb := range judgedBets {
			if _, seen := perfectByUser[jb.userID]; !seen {
				perfectByUser[jb.userID] = true
			}
			if !jb.correct {
				perfectByUser[jb.userID] = false
			}
		}
	}

	awards := make([]bet.PointsAward, 0, len(judgedBets))
	for _, jb := range judgedBets {
		points := 0
		if jb.correct {
			multiplier := 1
			if cfg.bonusActive() {
				multiplier = bonusMultiplier
			} else if perfectByUser[jb.userID] {
				multiplier = bonusMultiplier
			}
			points = basePointsPerCorrectBet * multiplier
		}
		awards = append(awards, bet.PointsAward{BetID: jb.betID, Points: points})
	}

	return awards, skipped
}
