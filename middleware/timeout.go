package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"masterboxer.com/social-feed/apperror"
)

// Timeout bounds every request. The request context is cancelled when the
// deadline passes so in-flight queries stop, and the client receives a 503
// envelope.
func Timeout(d time.Duration) mux.MiddlewareFunc {
	body, _ := json.Marshal(apperror.New(http.StatusServiceUnavailable, "Request timed out"))
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, string(body))
	}
}
