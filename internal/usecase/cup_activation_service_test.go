package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/fixture"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/season"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
)

func remainingGames(counts ...int) []fixture.TeamRemainingGames {
	teams := make([]fixture.TeamRemainingGames, 0, len(counts))
	for idx, count := range counts {
		teams = append(teams, fixture.TeamRemainingGames{
			TeamID:         int64(idx + 1),
			RemainingGames: count,
		})
	}
	return teams
}

func newActivationFixture(current *season.Season, teams []fixture.TeamRemainingGames) (*CupActivationService, *stubSeasonRepo, *stubCupAuditRepo) {
	seasonRepo := &stubSeasonRepo{current: current}
	auditRepo := &stubCupAuditRepo{}
	svc := NewCupActivationService(
		seasonRepo,
		&stubFixtureRepo{remainingGames: teams},
		auditRepo,
		nil,
		stubIDGenerator{id: "session-abc"},
		logging.NewNop(),
	)
	return svc, seasonRepo, auditRepo
}

func TestCheckAndActivate_ThresholdMet(t *testing.T) {
	t.Parallel()

	// 3 of 5 teams at five or fewer games = 60%, meeting the inclusive
	// default threshold exactly.
	svc, seasonRepo, auditRepo := newActivationFixture(
		&season.Season{ID: 7},
		remainingGames(5, 4, 0, 8, 9),
	)

	result, err := svc.CheckAndActivate(context.Background(), ActivationCheckRequest{})
	if err != nil {
		t.Fatalf("check and activate: %v", err)
	}
	if !result.ConditionMet {
		t.Fatalf("60%% must meet the 60%% threshold: %+v", result.FixtureSnapshot)
	}
	if !result.Activated || result.ActionTaken != "activated" {
		t.Fatalf("unexpected activation outcome: %+v", result)
	}
	if result.WasAlreadyActivated {
		t.Fatalf("a fresh activation must not report the cup as previously active")
	}
	if len(seasonRepo.activatedIDs) != 1 || seasonRepo.activatedIDs[0] != 7 {
		t.Fatalf("activation not persisted: %v", seasonRepo.activatedIDs)
	}
	if len(auditRepo.records) != 1 {
		t.Fatalf("expected one audit record, got %d", len(auditRepo.records))
	}
	if auditRepo.records[0].SessionID != "session-abc" {
		t.Fatalf("unexpected audit session id: %q", auditRepo.records[0].SessionID)
	}
}

func TestCheckAndActivate_BelowThreshold(t *testing.T) {
	t.Parallel()

	svc, seasonRepo, auditRepo := newActivationFixture(
		&season.Season{ID: 7},
		remainingGames(5, 8, 9, 10, 12),
	)

	result, err := svc.CheckAndActivate(context.Background(), ActivationCheckRequest{})
	if err != nil {
		t.Fatalf("check and activate: %v", err)
	}
	if result.ConditionMet || result.Activated {
		t.Fatalf("20%% must not activate: %+v", result)
	}
	if result.Decision != "conditions_not_met" {
		t.Fatalf("unexpected decision: %q", result.Decision)
	}
	if len(seasonRepo.activatedIDs) != 0 {
		t.Fatalf("no activation write expected: %v", seasonRepo.activatedIDs)
	}
	if len(auditRepo.records) != 1 {
		t.Fatalf("audit must be persisted on every run, got %d records", len(auditRepo.records))
	}
}

func TestCheckAndActivate_AlreadyActive(t *testing.T) {
	t.Parallel()

	svc, seasonRepo, _ := newActivationFixture(
		&season.Season{ID: 7, LastRoundSpecialActivated: true},
		remainingGames(1, 2),
	)

	result, err := svc.CheckAndActivate(context.Background(), ActivationCheckRequest{})
	if err != nil {
		t.Fatalf("check and activate: %v", err)
	}
	if result.Decision != "already_active" || result.ActionTaken != "none" {
		t.Fatalf("unexpected outcome: %+v", result)
	}
	if !result.Activated || !result.WasAlreadyActivated {
		t.Fatalf("already active season should report both flags: %+v", result)
	}
	if len(seasonRepo.activatedIDs) != 0 {
		t.Fatalf("no second activation write expected: %v", seasonRepo.activatedIDs)
	}
}

func TestCheckAndActivate_LostRaceIsSuccess(t *testing.T) {
	t.Parallel()

	svc, _, auditRepo := newActivationFixture(
		&season.Season{ID: 7},
		remainingGames(1, 2),
	)
	seasonRepo := &stubSeasonRepo{current: &season.Season{ID: 7}, alreadyActivated: true}
	svc.seasonRepo = seasonRepo

	result, err := svc.CheckAndActivate(context.Background(), ActivationCheckRequest{})
	if err != nil {
		t.Fatalf("losing the activation race must not be an error: %v", err)
	}
	if !result.Activated || result.ActionTaken != "activation_raced" {
		t.Fatalf("unexpected race outcome: %+v", result)
	}
	if !result.WasAlreadyActivated {
		t.Fatalf("losing the race means the cup was already active: %+v", result)
	}
	if len(auditRepo.records) != 1 {
		t.Fatalf("audit missing after raced activation")
	}
}

func TestCheckAndActivate_InvalidThreshold(t *testing.T) {
	t.Parallel()

	svc, _, _ := newActivationFixture(&season.Season{ID: 7}, nil)

	_, err := svc.CheckAndActivate(context.Background(), ActivationCheckRequest{ThresholdPercent: 140})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCheckAndActivate_NoCurrentSeason(t *testing.T) {
	t.Parallel()

	svc, _, _ := newActivationFixture(nil, nil)

	_, err := svc.CheckAndActivate(context.Background(), ActivationCheckRequest{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCheckAndActivate_SnapshotFailureStillAudited(t *testing.T) {
	t.Parallel()

	seasonRepo := &stubSeasonRepo{current: &season.Season{ID: 7}}
	auditRepo := &stubCupAuditRepo{}
	svc := NewCupActivationService(
		seasonRepo,
		&stubFixtureRepo{remainingErr: errors.New("query timeout")},
		auditRepo,
		nil,
		stubIDGenerator{},
		logging.NewNop(),
	)

	_, err := svc.CheckAndActivate(context.Background(), ActivationCheckRequest{})
	if err == nil {
		t.Fatalf("expected error from snapshot failure")
	}
	if len(auditRepo.records) != 1 {
		t.Fatalf("failed run must still be audited, got %d records", len(auditRepo.records))
	}
	if len(auditRepo.records[0].Errors) == 0 {
		t.Fatalf("audit record should carry the failure")
	}
}

func TestCheckAndActivate_CustomThresholdBoundary(t *testing.T) {
	t.Parallel()

	// 1 of 2 teams = 50%; a 50% threshold is met inclusively, 51% is not.
	t.Run("inclusive", func(t *testing.T) {
		svc, _, _ := newActivationFixture(&season.Season{ID: 7}, remainingGames(3, 9))
		result, err := svc.CheckAndActivate(context.Background(), ActivationCheckRequest{ThresholdPercent: 50})
		if err != nil {
			t.Fatalf("check and activate: %v", err)
		}
		if !result.ConditionMet {
			t.Fatalf("50%% must meet a 50%% threshold")
		}
	})

	t.Run("just above", func(t *testing.T) {
		svc, _, _ := newActivationFixture(&season.Season{ID: 7}, remainingGames(3, 9))
		result, err := svc.CheckAndActivate(context.Background(), ActivationCheckRequest{ThresholdPercent: 51})
		if err != nil {
			t.Fatalf("check and activate: %v", err)
		}
		if result.ConditionMet {
			t.Fatalf("50%% must not meet a 51%% threshold")
		}
	})
}
