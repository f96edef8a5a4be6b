package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"masterboxer.com/social-feed/apperror"
	"masterboxer.com/social-feed/auth"
)

type IdentityResolver interface {
	Resolve(token string) (string, error)
}

// AuthGate requires a valid bearer token on every request the exclusion
// table does not match. The resolved user id is stored on the request
// context for handlers to read with auth.UserID.
func AuthGate(resolver IdentityResolver, excluded *ExclusionTable) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if excluded.Match(r) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				apperror.Write(w, apperror.Unauthorized("Unauthorized"))
				return
			}

			userID, err := resolver.Resolve(token)
			if err != nil {
				apperror.Write(w, apperror.Unauthorized("Unauthorized"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
