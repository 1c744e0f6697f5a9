package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/profile"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/standings"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
)

type StandingsService struct {
	standingsRepo standings.Repository
	profileRepo   profile.Repository
	logger        *logging.Logger
}

func NewStandingsService(
	standingsRepo standings.Repository,
	profileRepo profile.Repository,
	logger *logging.Logger,
) *StandingsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StandingsService{
		standingsRepo: standingsRepo,
		profileRepo:   profileRepo,
		logger:        logger,
	}
}

// CalculateStandings merges game points and dynamic points into the
// ranked leaderboard. Either aggregation failing is fatal to the whole
// calculation; a user missing from the dynamic map simply scores 0 there.
func (s *StandingsService) CalculateStandings(ctx context.Context) ([]standings.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.CalculateStandings")
	defer span.End()

	gameRows, err := s.standingsRepo.AggregateGamePoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate game points: %w", err)
	}

	dynamicByUser, err := s.standingsRepo.DynamicPointsForLatestScoredRound(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch dynamic points: %w", err)
	}

	entries := make([]standings.Entry, 0, len(gameRows)+len(dynamicByUser))
	seen := make(map[string]struct{}, len(gameRows))
	for _, row := range gameRows {
		dynamicPoints := dynamicByUser[row.UserID]
		entries = append(entries, standings.Entry{
			UserID:        row.UserID,
			GamePoints:    row.TotalPoints,
			DynamicPoints: dynamicPoints,
			CombinedTotal: row.TotalPoints + dynamicPoints,
		})
		seen[row.UserID] = struct{}{}
	}

	// Users with only questionnaire points still belong on the board.
	extras := make([]string, 0)
	for userID := range dynamicByUser {
		if _, ok := seen[userID]; !ok {
			extras = append(extras, userID)
		}
	}
	sort.Strings(extras)
	for _, userID := range extras {
		entries = append(entries, standings.Entry{
			UserID:        userID,
			DynamicPoints: dynamicByUser[userID],
			CombinedTotal: dynamicByUser[userID],
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CombinedTotal > entries[j].CombinedTotal
	})
	assignRanks(entries)

	s.decorateUsernames(ctx, entries)

	return entries, nil
}

// assignRanks applies standard competition ranking: tied totals share a
// rank and the next distinct total takes its 1-based position, so a
// two-way tie at the top yields 1,1,3.
func assignRanks(entries []standings.Entry) {
	for idx := range entries {
		if idx == 0 {
			entries[idx].Rank = 1
			continue
		}
		if entries[idx].CombinedTotal < entries[idx-1].CombinedTotal {
			entries[idx].Rank = idx + 1
			continue
		}
		entries[idx].Rank = entries[idx-1].Rank
		entries[idx].IsTied = true
		entries[idx-1].IsTied = true
	}
}

// decorateUsernames is best effort: a profile lookup failure degrades to
// bare user ids rather than failing the standings.
func (s *StandingsService) decorateUsernames(ctx context.Context, entries []standings.Entry) {
	if s.profileRepo == nil || len(entries) == 0 {
		return
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
	}

	profiles, err := s.profileRepo.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.WarnContext(ctx, "list profiles for standings failed", "error", err)
		return
	}

	nameByID := make(map[string]string, len(profiles))
	for _, p := range profiles {
		nameByID[p.ID] = p.FullName
	}
	for idx := range entries {
		entries[idx].Username = nameByID[entries[idx].UserID]
	}
}
