package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"masterboxer.com/social-feed/apperror"
)

// Recover turns a panicking handler into a 500 response. The server keeps
// serving other requests.
func Recover(log *zap.SugaredLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Errorw("panic recovered",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)

				if !sw.written {
					apperror.Write(sw, apperror.Internal(http.StatusText(http.StatusInternalServerError)))
				}
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
