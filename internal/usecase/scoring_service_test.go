package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/bet"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/fixture"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/round"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/season"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
)

func finishedFixture(id int64, result string) fixture.Fixture {
	return fixture.Fixture{ID: id, SeasonID: 1, Status: fixture.StatusFinished, Result: result}
}

func newScoringFixture(t *testing.T, rounds map[int64]round.BettingRound, fixtures map[int64][]fixture.Fixture, bets map[int64][]bet.UserBet, seasons map[int64]season.Season) (*ScoringService, *stubBetRepo) {
	t.Helper()

	betRepo := &stubBetRepo{bets: bets}
	svc := NewScoringService(
		&stubRoundRepo{rounds: rounds},
		&stubFixtureRepo{fixtures: fixtures},
		betRepo,
		&stubSeasonRepo{seasons: seasons},
		logging.NewNop(),
	)
	return svc, betRepo
}

func awardsByBetID(awards []bet.PointsAward) map[int64]int {
	out := make(map[int64]int, len(awards))
	for _, a := range awards {
		out[a.BetID] = a.Points
	}
	return out
}

func TestScoreRound_BasePoints(t *testing.T) {
	t.Parallel()

	svc, betRepo := newScoringFixture(t,
		map[int64]round.BettingRound{10: {ID: 10, SeasonID: 1, Status: round.StatusScoring}},
		map[int64][]fixture.Fixture{10: {
			finishedFixture(100, fixture.ResultHome),
			finishedFixture(101, fixture.ResultDraw),
		}},
		map[int64][]bet.UserBet{10: {
			{ID: 1, UserID: "alice", FixtureID: 100, RoundID: 10, Prediction: fixture.ResultHome},
			{ID: 2, UserID: "alice", FixtureID: 101, RoundID: 10, Prediction: fixture.ResultAway},
			{ID: 3, UserID: "bob", FixtureID: 100, RoundID: 10, Prediction: fixture.ResultAway},
		}},
		map[int64]season.Season{1: {ID: 1}},
	)

	result, err := svc.ScoreRound(context.Background(), 10)
	if err != nil {
		t.Fatalf("score round: %v", err)
	}
	if !result.Success || result.AlreadyScored {
		t.Fatalf("unexpected result flags: %+v", result)
	}
	if result.BetsProcessed != 3 || result.BetsUpdated != 3 {
		t.Fatalf("unexpected bet counts: %+v", result)
	}

	awards := awardsByBetID(betRepo.updated)
	if awards[1] != 1 {
		t.Fatalf("correct bet should score 1, got %d", awards[1])
	}
	if awards[2] != 0 || awards[3] != 0 {
		t.Fatalf("wrong bets should score 0, got %d and %d", awards[2], awards[3])
	}
}

func TestScoreRound_PerfectRoundDoublesOwnBets(t *testing.T) {
	t.Parallel()

	// Alice judged on both her bets and correct on both; Bob only bet one
	// fixture and got it right, which still counts as a perfect round for
	// him. Carol missed one, no bonus.
	svc, betRepo := newScoringFixture(t,
		map[int64]round.BettingRound{10: {ID: 10, SeasonID: 1, Status: round.StatusScoring}},
		map[int64][]fixture.Fixture{10: {
			finishedFixture(100, fixture.ResultHome),
			finishedFixture(101, fixture.ResultDraw),
		}},
		map[int64][]bet.UserBet{10: {
			{ID: 1, UserID: "alice", FixtureID: 100, RoundID: 10, Prediction: fixture.ResultHome},
			{ID: 2, UserID: "alice", FixtureID: 101, RoundID: 10, Prediction: fixture.ResultDraw},
			{ID: 3, UserID: "bob", FixtureID: 100, RoundID: 10, Prediction: fixture.ResultHome},
			{ID: 4, UserID: "carol", FixtureID: 100, RoundID: 10, Prediction: fixture.ResultHome},
			{ID: 5, UserID: "carol", FixtureID: 101, RoundID: 10, Prediction: fixture.ResultAway},
		}},
		map[int64]season.Season{1: {ID: 1}},
	)

	_, err := svc.ScoreRound(context.Background(), 10)
	if err != nil {
		t.Fatalf("score round: %v", err)
	}

	awards := awardsByBetID(betRepo.updated)
	if awards[1] != 2 || awards[2] != 2 {
		t.Fatalf("alice should get perfect-round doubling, got %d and %d", awards[1], awards[2])
	}
	if awards[3] != 2 {
		t.Fatalf("bob's partial participation should still qualify, got %d", awards[3])
	}
	if awards[4] != 1 || awards[5] != 0 {
		t.Fatalf("carol should score plain points, got %d and %d", awards[4], awards[5])
	}
}

func TestScoreRound_BonusRoundSuppressesPerfectBonus(t *testing.T) {
	t.Parallel()

	// On a bonus round every correct bet doubles, and a perfect round must
	// not stack a second doubling on top.
	svc, betRepo := newScoringFixture(t,
		map[int64]round.BettingRound{10: {ID: 10, SeasonID: 1, Status: round.StatusScoring, IsBonusRound: true}},
		map[int64][]fixture.Fixture{10: {
			finishedFixture(100, fixture.ResultHome),
			finishedFixture(101, fixture.ResultDraw),
		}},
		map[int64][]bet.UserBet{10: {
			{ID: 1, UserID: "alice", FixtureID: 100, RoundID: 10, Prediction: fixture.ResultHome},
			{ID: 2, UserID: "alice", FixtureID: 101, RoundID: 10, Prediction: fixture.ResultDraw},
			{ID: 3, UserID: "bob", FixtureID: 100, RoundID: 10, Prediction: fixture.ResultAway},
		}},
		map[int64]season.Season{1: {ID: 1}},
	)

	_, err := svc.ScoreRound(context.Background(), 10)
	if err != nil {
		t.Fatalf("score round: %v", err)
	}

	awards := awardsByBetID(betRepo.updated)
	if awards[1] != 2 || awards[2] != 2 {
		t.Fatalf("bonus round corrects should score 2, never 4: got %d and %d", awards[1], awards[2])
	}
	if awards[3] != 0 {
		t.Fatalf("wrong bet on bonus round should score 0, got %d", awards[3])
	}
}

func TestScoreRound_GlobalBonusModeDoubles(t *testing.T) {
	t.Parallel()

	svc, betRepo := newScoringFixture(t,
		map[int64]round.BettingRound{10: {ID: 10, SeasonID: 1, Status: round.StatusScoring}},
		map[int64][]fixture.Fixture{10: {finishedFixture(100, fixture.ResultAway)}},
		map[int64][]bet.UserBet{10: {
			{ID: 1, UserID: "alice", FixtureID: 100, RoundID: 10, Prediction: fixture.ResultAway},
		}},
		map[int64]season.Season{1: {ID: 1, BonusModeActive: true}},
	)

	_, err := svc.ScoreRound(context.Background(), 10)
	if err != nil {
		t.Fatalf("score round: %v", err)
	}

	awards := awardsByBetID(betRepo.updated)
	if awards[1] != 2 {
		t.Fatalf("global bonus should double correct bets, got %d", awards[1])
	}
}

func TestScoreRound_AlreadyScoredIsNoop(t *testing.T) {
	t.Parallel()

	svc, betRepo := newScoringFixture(t,
		map[int64]round.BettingRound{10: {ID: 10, SeasonID: 1, Status: round.StatusScored}},
		nil, nil,
		map[int64]season.Season{1: {ID: 1}},
	)

	result, err := svc.ScoreRound(context.Background(), 10)
	if err != nil {
		t.Fatalf("score round: %v", err)
	}
	if !result.AlreadyScored || !result.Success {
		t.Fatalf("unexpected result flags: %+v", result)
	}
	if betRepo.updateCalls != 0 {
		t.Fatalf("already scored round must not write, got %d update calls", betRepo.updateCalls)
	}
}

func TestScoreRound_UnsettledFixtureSkipsItsBets(t *testing.T) {
	t.Parallel()

	svc, betRepo := newScoringFixture(t,
		map[int64]round.BettingRound{10: {ID: 10, SeasonID: 1, Status: round.StatusScoring}},
		map[int64][]fixture.Fixture{10: {
			finishedFixture(100, fixture.ResultHome),
			{ID: 101, SeasonID: 1, Status: fixture.StatusPostponed},
		}},
		map[int64][]bet.UserBet{10: {
			{ID: 1, UserID: "alice", FixtureID: 100, RoundID: 10, Prediction: fixture.ResultHome},
			{ID: 2, UserID: "alice", FixtureID: 101, RoundID: 10, Prediction: fixture.ResultDraw},
		}},
		map[int64]season.Season{1: {ID: 1}},
	)

	result, err := svc.ScoreRound(context.Background(), 10)
	if err != nil {
		t.Fatalf("score round: %v", err)
	}
	if !result.IncompleteScoring {
		t.Fatalf("expected incomplete scoring flag: %+v", result)
	}
	if len(result.SkippedFixtureIDs) != 1 || result.SkippedFixtureIDs[0] != 101 {
		t.Fatalf("unexpected skipped fixtures: %v", result.SkippedFixtureIDs)
	}
	if result.BetsUpdated != 1 {
		t.Fatalf("only the settled fixture's bet should be judged, got %d", result.BetsUpdated)
	}

	awards := awardsByBetID(betRepo.updated)
	if _, ok := awards[2]; ok {
		t.Fatalf("bet on unsettled fixture must not receive an award")
	}
}

func TestScoreRound_LiveFixtureDefersWholeRound(t *testing.T) {
	t.Parallel()

	// One fixture finished, one still live. Completing the round now
	// would strand the live fixture's bets forever, so nothing is
	// written and the round waits for the next pass.
	svc, betRepo := newScoringFixture(t,
		map[int64]round.BettingRound{10: {ID: 10, SeasonID: 1, Status: round.StatusScoring}},
		map[int64][]fixture.Fixture{10: {
			finishedFixture(100, fixture.ResultHome),
			{ID: 101, SeasonID: 1, Status: fixture.StatusLive},
		}},
		map[int64][]bet.UserBet{10: {
			{ID: 1, UserID: "alice", FixtureID: 100, RoundID: 10, Prediction: fixture.ResultHome},
			{ID: 2, UserID: "alice", FixtureID: 101, RoundID: 10, Prediction: fixture.ResultDraw},
		}},
		map[int64]season.Season{1: {ID: 1}},
	)

	result, err := svc.ScoreRound(context.Background(), 10)
	if err != nil {
		t.Fatalf("score round: %v", err)
	}
	if result.Success {
		t.Fatalf("round with a live fixture must not complete: %+v", result)
	}
	if !result.IncompleteScoring {
		t.Fatalf("expected incomplete scoring flag: %+v", result)
	}
	if len(result.SkippedFixtureIDs) != 1 || result.SkippedFixtureIDs[0] != 101 {
		t.Fatalf("unexpected pending fixtures: %v", result.SkippedFixtureIDs)
	}
	if betRepo.updateCalls != 0 {
		t.Fatalf("deferred round must not write, got %d update calls", betRepo.updateCalls)
	}
}

func TestScoreRound_AllFixturesUnsettledLeavesRoundUnscored(t *testing.T) {
	t.Parallel()

	svc, betRepo := newScoringFixture(t,
		map[int64]round.BettingRound{10: {ID: 10, SeasonID: 1, Status: round.StatusScoring}},
		map[int64][]fixture.Fixture{10: {
			{ID: 100, SeasonID: 1, Status: fixture.StatusLive},
		}},
		map[int64][]bet.UserBet{10: {
			{ID: 1, UserID: "alice", FixtureID: 100, RoundID: 10, Prediction: fixture.ResultHome},
		}},
		map[int64]season.Season{1: {ID: 1}},
	)

	result, err := svc.ScoreRound(context.Background(), 10)
	if err != nil {
		t.Fatalf("score round: %v", err)
	}
	if result.Success {
		t.Fatalf("round with no settled fixtures must not report success")
	}
	if len(result.Errors) == 0 {
		t.Fatalf("expected an error entry for a fully unsettled round")
	}
	if betRepo.updateCalls != 0 {
		t.Fatalf("no write should happen, got %d update calls", betRepo.updateCalls)
	}
}

func TestScoreRound_UnknownRound(t *testing.T) {
	t.Parallel()

	svc, _ := newScoringFixture(t, map[int64]round.BettingRound{}, nil, nil, nil)

	_, err := svc.ScoreRound(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScoreRound_DerivesResultFromScore(t *testing.T) {
	t.Parallel()

	svc, betRepo := newScoringFixture(t,
		map[int64]round.BettingRound{10: {ID: 10, SeasonID: 1, Status: round.StatusScoring}},
		map[int64][]fixture.Fixture{10: {
			{ID: 100, SeasonID: 1, Status: "FT", HomeScore: intPtr(0), AwayScore: intPtr(2)},
		}},
		map[int64][]bet.UserBet{10: {
			{ID: 1, UserID: "alice", FixtureID: 100, RoundID: 10, Prediction: fixture.ResultAway},
		}},
		map[int64]season.Season{1: {ID: 1}},
	)

	_, err := svc.ScoreRound(context.Background(), 10)
	if err != nil {
		t.Fatalf("score round: %v", err)
	}

	awards := awardsByBetID(betRepo.updated)
	if awards[1] != 2 {
		// Single correct bet is also a perfect round for alice.
		t.Fatalf("expected score-derived result to judge correct with bonus, got %d", awards[1])
	}
}
