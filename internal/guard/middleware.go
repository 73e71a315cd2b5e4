package guard

import (
	"net/http"

	"github.com/brizzai/dishom-client/internal/logger"
	"github.com/brizzai/dishom-client/internal/session"
	"go.uber.org/zap"
)

// Middleware protects next with the session's verdict. Pending answers 503
// with Retry-After and an empty body, Redirect answers 302 to LandingRoute,
// Allow serves next with the session attached to the request context.
func Middleware(s *session.Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			verdict := Decide(s.State())
			logger.Debug("guard verdict",
				zap.String("method", r.Method),
				zap.String("url", r.URL.String()),
				zap.Stringer("verdict", verdict),
			)

			switch verdict {
			case Pending:
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusServiceUnavailable)
			case Redirect:
				http.Redirect(w, r, LandingRoute, http.StatusFound)
			default:
				next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
			}
		})
	}
}

// CORS middleware for the local HTTP mode
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Mcp-Session-Id")
		w.Header().Set("Access-Control-Expose-Headers", "Mcp-Session-Id, Location, Retry-After")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
