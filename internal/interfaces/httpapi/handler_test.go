package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler_Healthz(t *testing.T) {
	t.Parallel()

	h := &Handler{}
	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if got := rec.Body.String(); got != `{"status":"ok"}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestHandler_GetSeasonWinners_InvalidSeasonID(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	registerPublicRoutes(mux, &Handler{})

	for _, path := range []string{
		"/v1/seasons/not-a-number/winners",
		"/v1/seasons/0/winners",
		"/v1/seasons/-3/winners",
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("path %s: unexpected status %d", path, rec.Code)
		}
	}
}
