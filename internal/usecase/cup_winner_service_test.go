package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/cup"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/season"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/winner"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
)

func TestDetermineCupWinners_RecordsTopScorer(t *testing.T) {
	t.Parallel()

	seasonRepo := &stubSeasonRepo{
		seasons: map[int64]season.Season{5: {ID: 5, CompetitionID: 39, LastRoundSpecialActivated: true}},
	}
	winnerRepo := &stubWinnerRepo{}
	svc := NewCupWinnerService(seasonRepo, &stubCupRepo{rows: []cup.StandingRow{
		{SeasonID: 5, UserID: "alice", Username: "Alice A", TotalPoints: 14},
		{SeasonID: 5, UserID: "bob", Username: "Bob B", TotalPoints: 11},
	}}, winnerRepo, logging.NewNop())

	result, err := svc.DetermineCupWinners(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, result.Winners, 1)
	require.Equal(t, "alice", result.Winners[0].UserID)
	require.Equal(t, winner.CompetitionLastRoundSpecial, result.Winners[0].CompetitionType)
	require.False(t, result.Winners[0].IsTied)
	// The season's main-competition winner stamp must stay untouched.
	require.Empty(t, seasonRepo.stampedIDs)
}

func TestDetermineCupWinners_TieAtTop(t *testing.T) {
	t.Parallel()

	seasonRepo := &stubSeasonRepo{
		seasons: map[int64]season.Season{5: {ID: 5, LastRoundSpecialActivated: true}},
	}
	svc := NewCupWinnerService(seasonRepo, &stubCupRepo{rows: []cup.StandingRow{
		{SeasonID: 5, UserID: "alice", TotalPoints: 14},
		{SeasonID: 5, UserID: "bob", TotalPoints: 14},
		{SeasonID: 5, UserID: "carol", TotalPoints: 9},
	}}, &stubWinnerRepo{}, logging.NewNop())

	result, err := svc.DetermineCupWinners(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, result.Winners, 2)
	for _, won := range result.Winners {
		require.True(t, won.IsTied)
	}
}

func TestDetermineCupWinners_NotActivatedIsNoop(t *testing.T) {
	t.Parallel()

	winnerRepo := &stubWinnerRepo{}
	svc := NewCupWinnerService(&stubSeasonRepo{
		seasons: map[int64]season.Season{5: {ID: 5, LastRoundSpecialActivated: false}},
	}, &stubCupRepo{rows: []cup.StandingRow{
		{SeasonID: 5, UserID: "alice", TotalPoints: 14},
	}}, winnerRepo, logging.NewNop())

	result, err := svc.DetermineCupWinners(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, result.Winners)
	require.Empty(t, winnerRepo.upserted)
}

func TestDetermineCupWinners_IdempotentShortCircuit(t *testing.T) {
	t.Parallel()

	stored := []winner.SeasonWinner{
		{SeasonID: 5, UserID: "alice", CompetitionType: winner.CompetitionLastRoundSpecial},
	}
	winnerRepo := &stubWinnerRepo{
		existing: map[string][]winner.SeasonWinner{winner.CompetitionLastRoundSpecial: stored},
	}
	svc := NewCupWinnerService(&stubSeasonRepo{}, &stubCupRepo{}, winnerRepo, logging.NewNop())

	result, err := svc.DetermineCupWinners(context.Background(), 5)
	require.NoError(t, err)
	require.True(t, result.AlreadyDetermined)
	require.Equal(t, stored, result.Winners)
	require.Empty(t, winnerRepo.upserted)
}

func TestDetermineCupWinnersForCompletedSeasons_SweepsEligible(t *testing.T) {
	t.Parallel()

	seasonRepo := &stubSeasonRepo{
		seasons: map[int64]season.Season{
			5: {ID: 5, CompetitionID: 39, LastRoundSpecialActivated: true},
		},
		awaitingCup: []season.Season{{ID: 5}, {ID: 6}},
	}
	winnerRepo := &stubWinnerRepo{}
	svc := NewCupWinnerService(seasonRepo, &stubCupRepo{rows: []cup.StandingRow{
		{SeasonID: 5, UserID: "alice", TotalPoints: 14},
	}}, winnerRepo, logging.NewNop())

	result, err := svc.DetermineCupWinnersForCompletedSeasons(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.SeasonsProcessed)
	// Season 6 is unknown, so its failure is isolated while season 5's
	// winner lands.
	require.Equal(t, 1, result.TotalWinnersDetermined)
	require.Len(t, result.Errors, 1)
	require.Len(t, winnerRepo.upserted, 1)
}

func TestCupStandings_CurrentSeasonLeaderboard(t *testing.T) {
	t.Parallel()

	svc := NewCupWinnerService(&stubSeasonRepo{
		current: &season.Season{ID: 5, LastRoundSpecialActivated: true},
	}, &stubCupRepo{rows: []cup.StandingRow{
		{SeasonID: 5, UserID: "alice", TotalPoints: 14},
		{SeasonID: 5, UserID: "bob", TotalPoints: 11},
	}}, &stubWinnerRepo{}, logging.NewNop())

	result, err := svc.CupStandings(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(5), result.SeasonID)
	require.True(t, result.Activated)
	require.Len(t, result.Rows, 2)
	require.Equal(t, "alice", result.Rows[0].UserID)
}

func TestCupStandings_NoCurrentSeason(t *testing.T) {
	t.Parallel()

	svc := NewCupWinnerService(&stubSeasonRepo{}, &stubCupRepo{}, &stubWinnerRepo{}, logging.NewNop())

	_, err := svc.CupStandings(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDetermineCupWinners_UnknownSeason(t *testing.T) {
	t.Parallel()

	svc := NewCupWinnerService(&stubSeasonRepo{}, &stubCupRepo{}, &stubWinnerRepo{}, logging.NewNop())

	_, err := svc.DetermineCupWinners(context.Background(), 404)
	require.ErrorIs(t, err, ErrNotFound)
}
