package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/standings"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/winner"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/cache"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/usecase"
)

const (
	standingsCacheKey     = "standings:current"
	cupStandingsCacheKey  = "cup:standings:current"
	hallOfFameCachePrefix = "hall-of-fame:season:"
)

// Handler carries the wired services behind the HTTP surface.
type Handler struct {
	Standings     *usecase.StandingsService
	Winners       *usecase.WinnerService
	CupWinners    *usecase.CupWinnerService
	CupActivation *usecase.CupActivationService
	Pipeline      *usecase.CronPipelineService

	CupActivationPercent float64

	CacheStore *cache.Store
	Logger     *logging.Logger
}

func (h *Handler) logger() *logging.Logger {
	if h.Logger == nil {
		return logging.Default()
	}
	return h.Logger
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

type standingsEntryDTO struct {
	UserID        string `json:"userId"`
	Username      string `json:"username,omitempty"`
	GamePoints    int    `json:"gamePoints"`
	DynamicPoints int    `json:"dynamicPoints"`
	CombinedTotal int    `json:"combinedTotal"`
	Rank          int    `json:"rank"`
	IsTied        bool   `json:"isTied"`
}

type standingsResponseDTO struct {
	Entries     []standingsEntryDTO `json:"entries"`
	GeneratedAt time.Time           `json:"generatedAt"`
}

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStandings")
	defer span.End()

	if h.CacheStore != nil {
		if cached, ok := h.CacheStore.Get(ctx, standingsCacheKey); ok {
			if dto, ok := cached.(standingsResponseDTO); ok {
				writeSuccess(ctx, w, http.StatusOK, dto)
				return
			}
		}
	}

	entries, err := h.Standings.CalculateStandings(ctx)
	if err != nil {
		h.logger().ErrorContext(ctx, "calculate standings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	dto := standingsResponseDTO{
		Entries:     toStandingsEntryDTOs(entries),
		GeneratedAt: time.Now().UTC(),
	}
	if h.CacheStore != nil {
		h.CacheStore.Set(ctx, standingsCacheKey, dto)
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}

func toStandingsEntryDTOs(entries []standings.Entry) []standingsEntryDTO {
	dtos := make([]standingsEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, standingsEntryDTO{
			UserID:        e.UserID,
			Username:      e.Username,
			GamePoints:    e.GamePoints,
			DynamicPoints: e.DynamicPoints,
			CombinedTotal: e.CombinedTotal,
			Rank:          e.Rank,
			IsTied:        e.IsTied,
		})
	}
	return dtos
}

type cupStandingsEntryDTO struct {
	UserID      string `json:"userId"`
	Username    string `json:"username,omitempty"`
	TotalPoints int    `json:"totalPoints"`
}

type cupStandingsResponseDTO struct {
	SeasonID  int64                  `json:"seasonId"`
	Activated bool                   `json:"activated"`
	Entries   []cupStandingsEntryDTO `json:"entries"`
}

func (h *Handler) GetCupStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCupStandings")
	defer span.End()

	if h.CacheStore != nil {
		if cached, ok := h.CacheStore.Get(ctx, cupStandingsCacheKey); ok {
			if dto, ok := cached.(cupStandingsResponseDTO); ok {
				writeSuccess(ctx, w, http.StatusOK, dto)
				return
			}
		}
	}

	result, err := h.CupWinners.CupStandings(ctx)
	if err != nil {
		h.logger().ErrorContext(ctx, "cup standings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	entries := make([]cupStandingsEntryDTO, 0, len(result.Rows))
	for _, row := range result.Rows {
		entries = append(entries, cupStandingsEntryDTO{
			UserID:      row.UserID,
			Username:    row.Username,
			TotalPoints: row.TotalPoints,
		})
	}
	dto := cupStandingsResponseDTO{
		SeasonID:  result.SeasonID,
		Activated: result.Activated,
		Entries:   entries,
	}
	if h.CacheStore != nil {
		h.CacheStore.Set(ctx, cupStandingsCacheKey, dto)
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}

type seasonWinnerDTO struct {
	SeasonID        int64  `json:"seasonId"`
	UserID          string `json:"userId"`
	Username        string `json:"username,omitempty"`
	GamePoints      int    `json:"gamePoints"`
	DynamicPoints   int    `json:"dynamicPoints"`
	TotalPoints     int    `json:"totalPoints"`
	CompetitionType string `json:"competitionType"`
	IsTied          bool   `json:"isTied"`
}

type seasonWinnersResponseDTO struct {
	SeasonID int64             `json:"seasonId"`
	Winners  []seasonWinnerDTO `json:"winners"`
}

func (h *Handler) GetSeasonWinners(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeasonWinners")
	defer span.End()

	seasonID, err := strconv.ParseInt(r.PathValue("seasonID"), 10, 64)
	if err != nil || seasonID <= 0 {
		writeError(ctx, w, usecase.ErrInvalidInput)
		return
	}

	cacheKey := hallOfFameCachePrefix + strconv.FormatInt(seasonID, 10)
	if h.CacheStore != nil {
		if cached, ok := h.CacheStore.Get(ctx, cacheKey); ok {
			if dto, ok := cached.(seasonWinnersResponseDTO); ok {
				writeSuccess(ctx, w, http.StatusOK, dto)
				return
			}
		}
	}

	rows, err := h.Winners.ListSeasonWinners(ctx, seasonID)
	if err != nil {
		h.logger().ErrorContext(ctx, "list season winners failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	dto := seasonWinnersResponseDTO{
		SeasonID: seasonID,
		Winners:  toSeasonWinnerDTOs(rows),
	}
	if h.CacheStore != nil {
		h.CacheStore.Set(ctx, cacheKey, dto)
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}

func toSeasonWinnerDTOs(rows []winner.SeasonWinner) []seasonWinnerDTO {
	dtos := make([]seasonWinnerDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, seasonWinnerDTO{
			SeasonID:        row.SeasonID,
			UserID:          row.UserID,
			Username:        row.Username,
			GamePoints:      row.GamePoints,
			DynamicPoints:   row.DynamicPoints,
			TotalPoints:     row.TotalPoints,
			CompetitionType: row.CompetitionType,
			IsTied:          row.IsTied,
		})
	}
	return dtos
}
