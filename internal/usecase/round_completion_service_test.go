package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/round"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
)

func TestDetectAndMarkCompletedRounds_MarksAndReturns(t *testing.T) {
	t.Parallel()

	repo := &stubRoundRepo{
		allFinished: []round.BettingRound{{ID: 1}, {ID: 2}},
	}
	svc := NewRoundCompletionService(repo, logging.NewNop())

	result, err := svc.DetectAndMarkCompletedRounds(context.Background())
	if err != nil {
		t.Fatalf("detect rounds: %v", err)
	}
	if len(result.RoundIDs) != 2 {
		t.Fatalf("unexpected round ids: %v", result.RoundIDs)
	}
	if len(repo.markedIDs) != 2 {
		t.Fatalf("expected both rounds marked, got %v", repo.markedIDs)
	}
}

func TestDetectAndMarkCompletedRounds_LostRaceIsSkipped(t *testing.T) {
	t.Parallel()

	repo := &stubRoundRepo{
		allFinished: []round.BettingRound{{ID: 1}, {ID: 2}},
		markScoring: func(id int64) (bool, error) {
			return id != 1, nil
		},
	}
	svc := NewRoundCompletionService(repo, logging.NewNop())

	result, err := svc.DetectAndMarkCompletedRounds(context.Background())
	if err != nil {
		t.Fatalf("detect rounds: %v", err)
	}
	if len(result.RoundIDs) != 1 || result.RoundIDs[0] != 2 {
		t.Fatalf("round lost to concurrent marker should be skipped: %v", result.RoundIDs)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("a lost race is not an error: %v", result.Errors)
	}
}

func TestDetectAndMarkCompletedRounds_MarkErrorIsIsolated(t *testing.T) {
	t.Parallel()

	repo := &stubRoundRepo{
		allFinished: []round.BettingRound{{ID: 1}, {ID: 2}},
		markScoring: func(id int64) (bool, error) {
			if id == 1 {
				return false, errors.New("deadlock detected")
			}
			return true, nil
		},
	}
	svc := NewRoundCompletionService(repo, logging.NewNop())

	result, err := svc.DetectAndMarkCompletedRounds(context.Background())
	if err != nil {
		t.Fatalf("detect rounds: %v", err)
	}
	if len(result.RoundIDs) != 1 || result.RoundIDs[0] != 2 {
		t.Fatalf("unexpected round ids: %v", result.RoundIDs)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one collected error: %v", result.Errors)
	}
}

func TestDetectAndMarkCompletedRounds_ReconciliationSweep(t *testing.T) {
	t.Parallel()

	repo := &stubRoundRepo{
		allFinished: []round.BettingRound{{ID: 1}},
		inScoring:   []round.BettingRound{{ID: 1}, {ID: 7}},
	}
	svc := NewRoundCompletionService(repo, logging.NewNop())

	result, err := svc.DetectAndMarkCompletedRounds(context.Background())
	if err != nil {
		t.Fatalf("detect rounds: %v", err)
	}
	// Round 1 was freshly marked; the sweep must not duplicate it, only
	// add the stuck round 7.
	if len(result.RoundIDs) != 2 {
		t.Fatalf("unexpected round ids: %v", result.RoundIDs)
	}
	seen := map[int64]int{}
	for _, id := range result.RoundIDs {
		seen[id]++
	}
	if seen[1] != 1 || seen[7] != 1 {
		t.Fatalf("sweep deduplication failed: %v", result.RoundIDs)
	}
}

func TestDetectAndMarkCompletedRounds_SweepErrorKeepsFreshRounds(t *testing.T) {
	t.Parallel()

	repo := &stubRoundRepo{
		allFinished: []round.BettingRound{{ID: 1}},
		sweepErr:    errors.New("timeout"),
	}
	svc := NewRoundCompletionService(repo, logging.NewNop())

	result, err := svc.DetectAndMarkCompletedRounds(context.Background())
	if err != nil {
		t.Fatalf("detect rounds: %v", err)
	}
	if len(result.RoundIDs) != 1 {
		t.Fatalf("fresh rounds should survive a failed sweep: %v", result.RoundIDs)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("sweep failure should be collected: %v", result.Errors)
	}
}
