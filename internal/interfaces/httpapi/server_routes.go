package httpapi

import "net/http"

func registerHealthRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /healthz", h.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /v1/standings", h.GetStandings)
	mux.HandleFunc("GET /v1/standings/cup", h.GetCupStandings)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/winners", h.GetSeasonWinners)
}

func registerCronRoutes(mux *http.ServeMux, h *Handler, cronSecret string) {
	mux.HandleFunc("GET /cron/process-rounds", RequireCronSecret(cronSecret, h.CronProcessRounds))
	mux.HandleFunc("GET /cron/season-completion", RequireCronSecret(cronSecret, h.CronSeasonCompletion))
	mux.HandleFunc("GET /cron/cup-activation", RequireCronSecret(cronSecret, h.CronCupActivation))
}
