package httpapi

import (
	"net/http"
	"time"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/usecase"
)

// Cron responses are consumed by the scheduler, not browsers, so they use
// a flat JSON shape instead of the public envelope.

type cronProcessRoundsResponse struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	RoundsDetected int      `json:"rounds_detected"`
	RoundsScored   int      `json:"rounds_scored"`
	RoundsSkipped  int      `json:"rounds_skipped"`
	Deduplicated   bool     `json:"deduplicated"`
	Errors         []string `json:"errors,omitempty"`
	DurationMs     int64    `json:"duration_ms"`
	Timestamp      string   `json:"timestamp"`
}

func (h *Handler) CronProcessRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CronProcessRounds")
	defer span.End()

	started := time.Now()
	result, err := h.Pipeline.ProcessRounds(ctx)

	resp := cronProcessRoundsResponse{
		Success:        err == nil,
		Message:        "round processing completed",
		RoundsDetected: result.RoundsDetected,
		RoundsScored:   result.RoundsScored,
		RoundsSkipped:  result.RoundsSkipped,
		Deduplicated:   result.Deduplicated,
		Errors:         result.Errors,
		DurationMs:     time.Since(started).Milliseconds(),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK
	if err != nil {
		h.logger().ErrorContext(ctx, "cron process rounds failed", "error", err)
		resp.Message = "round processing failed"
		resp.Errors = append(resp.Errors, err.Error())
		status = http.StatusInternalServerError
	}

	writeJSON(ctx, w, status, resp)
}

type cronSeasonCompletionResponse struct {
	Success                bool     `json:"success"`
	Message                string   `json:"message"`
	CompletedSeasons       []int64  `json:"completed_seasons"`
	SeasonsProcessed       int      `json:"seasons_processed"`
	TotalWinnersDetermined int      `json:"total_winners_determined"`
	Deduplicated           bool     `json:"deduplicated"`
	Errors                 []string `json:"errors,omitempty"`
	DurationMs             int64    `json:"duration_ms"`
	Timestamp              string   `json:"timestamp"`
}

func (h *Handler) CronSeasonCompletion(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CronSeasonCompletion")
	defer span.End()

	started := time.Now()
	result, err := h.Pipeline.RunSeasonCompletion(ctx)

	resp := cronSeasonCompletionResponse{
		Success:                err == nil,
		Message:                "season completion check finished",
		CompletedSeasons:       result.CompletedSeasonIDs,
		SeasonsProcessed:       result.SeasonsProcessed,
		TotalWinnersDetermined: result.TotalWinnersDetermined,
		Deduplicated:           result.Deduplicated,
		Errors:                 result.Errors,
		DurationMs:             time.Since(started).Milliseconds(),
		Timestamp:              time.Now().UTC().Format(time.RFC3339),
	}
	if resp.CompletedSeasons == nil {
		resp.CompletedSeasons = []int64{}
	}
	status := http.StatusOK
	if err != nil {
		h.logger().ErrorContext(ctx, "cron season completion failed", "error", err)
		resp.Message = "season completion check failed"
		resp.Errors = append(resp.Errors, err.Error())
		status = http.StatusInternalServerError
	}

	writeJSON(ctx, w, status, resp)
}

// cupActivationMetrics feeds monitoring dashboards; the field names are
// part of the contract with the alerting side.
type cupActivationMetrics struct {
	SessionID            string   `json:"session_id"`
	SeasonID             int64    `json:"season_id"`
	TeamsTotal           int      `json:"teams_total"`
	ActivationPercentage float64  `json:"activation_percentage"`
	ThresholdMet         bool     `json:"threshold_met"`
	CupActivated         bool     `json:"cup_activated"`
	WasAlreadyActivated  bool     `json:"was_already_activated"`
	Decision             string   `json:"decision"`
	ActionTaken          string   `json:"action_taken"`
	Reasoning            string   `json:"reasoning"`
	Errors               []string `json:"errors,omitempty"`
}

type cronCupActivationResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Metrics    cupActivationMetrics `json:"metrics"`
	DurationMs int64                `json:"duration_ms"`
	Timestamp  string               `json:"timestamp"`
}

func (h *Handler) CronCupActivation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CronCupActivation")
	defer span.End()

	started := time.Now()
	result, err := h.CupActivation.CheckAndActivate(ctx, usecase.ActivationCheckRequest{
		ThresholdPercent: h.CupActivationPercent,
	})

	resp := cronCupActivationResponse{
		Success: err == nil,
		Message: "cup activation check finished",
		Metrics: cupActivationMetrics{
			SessionID:            result.SessionID,
			SeasonID:             result.SeasonID,
			TeamsTotal:           result.FixtureSnapshot.TeamsTotal,
			ActivationPercentage: result.FixtureSnapshot.Percentage,
			ThresholdMet:         result.ConditionMet,
			CupActivated:         result.Activated,
			WasAlreadyActivated:  result.WasAlreadyActivated,
			Decision:             result.Decision,
			ActionTaken:          result.ActionTaken,
			Reasoning:            result.Reasoning,
			Errors:               result.Errors,
		},
		DurationMs: time.Since(started).Milliseconds(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK
	if err != nil {
		h.logger().ErrorContext(ctx, "cron cup activation failed", "error", err)
		resp.Message = "cup activation check failed"
		resp.Metrics.Errors = append(resp.Metrics.Errors, err.Error())
		status = http.StatusInternalServerError
	}

	writeJSON(ctx, w, status, resp)
}
