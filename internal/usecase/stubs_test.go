package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/bet"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/cup"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/fixture"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/profile"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/round"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/season"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/standings"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/winner"
)

func intPtr(v int) *int { return &v }

type stubRoundRepo struct {
	rounds      map[int64]round.BettingRound
	allFinished []round.BettingRound
	inScoring   []round.BettingRound
	markScoring func(id int64) (bool, error)
	listErr     error
	sweepErr    error
	markedIDs   []int64
	mu          sync.Mutex
}

func (r *stubRoundRepo) GetByID(_ context.Context, id int64) (round.BettingRound, bool, error) {
	item, ok := r.rounds[id]
	return item, ok, nil
}

func (r *stubRoundRepo) ListWithAllFixturesFinished(context.Context) ([]round.BettingRound, error) {
	return r.allFinished, r.listErr
}

func (r *stubRoundRepo) ListInScoring(context.Context) ([]round.BettingRound, error) {
	return r.inScoring, r.sweepErr
}

func (r *stubRoundRepo) MarkScoring(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	r.markedIDs = append(r.markedIDs, id)
	r.mu.Unlock()
	if r.markScoring != nil {
		return r.markScoring(id)
	}
	return true, nil
}

type stubFixtureRepo struct {
	fixtures       map[int64][]fixture.Fixture
	remainingGames []fixture.TeamRemainingGames
	remainingErr   error
}

func (r *stubFixtureRepo) ListByRound(_ context.Context, roundID int64) ([]fixture.Fixture, error) {
	return r.fixtures[roundID], nil
}

func (r *stubFixtureRepo) ListRemainingGamesBySeason(context.Context, int64) ([]fixture.TeamRemainingGames, error) {
	return r.remainingGames, r.remainingErr
}

type stubBetRepo struct {
	bets      map[int64][]bet.UserBet
	updateErr error

	mu           sync.Mutex
	updatedRound int64
	updated      []bet.PointsAward
	updateCalls  int
}

func (r *stubBetRepo) ListByRound(_ context.Context, roundID int64) ([]bet.UserBet, error) {
	return r.bets[roundID], nil
}

func (r *stubBetRepo) UpdatePointsBatch(_ context.Context, roundID int64, awards []bet.PointsAward, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	r.updatedRound = roundID
	r.updated = awards
	return r.updateErr
}

type stubSeasonRepo struct {
	seasons          map[int64]season.Season
	current          *season.Season
	currentErr       error
	fullyScored      []season.Season
	awaitingWinners  []season.Season
	awaitingCup      []season.Season
	markCompleted    func(id int64) (bool, error)
	activate         func(id int64) (bool, error)
	activateErr      error
	alreadyActivated bool

	mu           sync.Mutex
	completedIDs []int64
	stampedIDs   []int64
	activatedIDs []int64
}

func (r *stubSeasonRepo) GetByID(_ context.Context, id int64) (season.Season, bool, error) {
	item, ok := r.seasons[id]
	return item, ok, nil
}

func (r *stubSeasonRepo) GetCurrent(context.Context) (season.Season, bool, error) {
	if r.currentErr != nil {
		return season.Season{}, false, r.currentErr
	}
	if r.current == nil {
		return season.Season{}, false, nil
	}
	return *r.current, true, nil
}

func (r *stubSeasonRepo) ListFullyScoredUncompleted(context.Context) ([]season.Season, error) {
	return r.fullyScored, nil
}

func (r *stubSeasonRepo) ListAwaitingWinnerDetermination(context.Context) ([]season.Season, error) {
	return r.awaitingWinners, nil
}

func (r *stubSeasonRepo) ListAwaitingCupWinnerDetermination(context.Context) ([]season.Season, error) {
	return r.awaitingCup, nil
}

func (r *stubSeasonRepo) MarkCompleted(_ context.Context, id int64, _ time.Time) (bool, error) {
	r.mu.Lock()
	r.completedIDs = append(r.completedIDs, id)
	r.mu.Unlock()
	if r.markCompleted != nil {
		return r.markCompleted(id)
	}
	return true, nil
}

func (r *stubSeasonRepo) StampWinnerDetermined(_ context.Context, id int64, _ time.Time) error {
	r.mu.Lock()
	r.stampedIDs = append(r.stampedIDs, id)
	r.mu.Unlock()
	return nil
}

func (r *stubSeasonRepo) ActivateLastRoundSpecial(_ context.Context, id int64, _ time.Time) (bool, error) {
	r.mu.Lock()
	r.activatedIDs = append(r.activatedIDs, id)
	r.mu.Unlock()
	if r.activate != nil {
		return r.activate(id)
	}
	return r.alreadyActivated, r.activateErr
}

type stubStandingsRepo struct {
	gamePoints    []standings.GamePointsRow
	gameErr       error
	dynamicPoints map[string]int
	dynamicErr    error
}

func (r *stubStandingsRepo) AggregateGamePoints(context.Context) ([]standings.GamePointsRow, error) {
	return r.gamePoints, r.gameErr
}

func (r *stubStandingsRepo) DynamicPointsForLatestScoredRound(context.Context) (map[string]int, error) {
	if r.dynamicErr != nil {
		return nil, r.dynamicErr
	}
	if r.dynamicPoints == nil {
		return map[string]int{}, nil
	}
	return r.dynamicPoints, nil
}

type stubProfileRepo struct {
	profiles []profile.Profile
	err      error
}

func (r *stubProfileRepo) ListByIDs(context.Context, []string) ([]profile.Profile, error) {
	return r.profiles, r.err
}

type stubWinnerRepo struct {
	existing map[string][]winner.SeasonWinner
	listErr  error

	mu        sync.Mutex
	upserted  [][]winner.SeasonWinner
	upsertErr error
}

func (r *stubWinnerRepo) ListBySeasonAndType(_ context.Context, seasonID int64, competitionType string) ([]winner.SeasonWinner, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var rows []winner.SeasonWinner
	for _, row := range r.existing[competitionType] {
		if row.SeasonID == seasonID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *stubWinnerRepo) UpsertBatch(_ context.Context, winners []winner.SeasonWinner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserted = append(r.upserted, winners)
	if r.existing == nil {
		r.existing = make(map[string][]winner.SeasonWinner)
	}
	for _, row := range winners {
		r.existing[row.CompetitionType] = append(r.existing[row.CompetitionType], row)
	}
	return nil
}

type stubCupRepo struct {
	rows []cup.StandingRow
	err  error
}

func (r *stubCupRepo) AggregatePointsBySeason(context.Context, int64) ([]cup.StandingRow, error) {
	return r.rows, r.err
}

type stubCupAuditRepo struct {
	mu      sync.Mutex
	records []cup.AuditRecord
	err     error
}

func (r *stubCupAuditRepo) Insert(_ context.Context, record cup.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}

type stubIDGenerator struct {
	id  string
	err error
}

func (g stubIDGenerator) NewID() (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if g.id == "" {
		return "session-1", nil
	}
	return g.id, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []int64
	err  error
	done chan struct{}
}

func (m *recordingMailer) SendSeasonSummary(_ context.Context, seasonID int64, _ int) error {
	m.mu.Lock()
	m.sent = append(m.sent, seasonID)
	m.mu.Unlock()
	if m.done != nil {
		m.done <- struct{}{}
	}
	return m.err
}
