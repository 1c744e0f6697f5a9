package httpapi

import (
	"net/http"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
)

// RouterConfig carries the request-path settings the router needs.
type RouterConfig struct {
	CronSecret         string
	CORSAllowedOrigins []string
}

// NewRouter assembles the mux and the middleware chain. Order matters:
// tracing wraps everything so the logger can pull trace ids, panics are
// recovered innermost so the other middleware still observe a response.
func NewRouter(h *Handler, cfg RouterConfig, logger *logging.Logger) http.Handler {
	mux := http.NewServeMux()
	registerHealthRoutes(mux, h)
	registerPublicRoutes(mux, h)
	registerCronRoutes(mux, h, cfg.CronSecret)

	var handler http.Handler = recoverPanic(logger, mux)
	handler = CORS(cfg.CORSAllowedOrigins, handler)
	handler = RequestLogging(logger, handler)
	handler = RequestTracing(handler)
	return handler
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "panic recovered in http handler",
					"panic", rec, "method", r.Method, "path", r.URL.Path)
				writeInternalError(r.Context(), w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
