package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"masterboxer.com/social-feed/apperror"
	"masterboxer.com/social-feed/auth"
)

const maxPageLimit = 100

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// It writes the error response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := apperror.Validate(dst); err != nil {
		apperror.Write(w, err)
		return false
	}
	return true
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		apperror.Write(w, apperror.Unauthorized("Unauthorized"))
		return "", false
	}
	return userID, true
}

// ParsePagination reads offset and limit from the query string. Missing,
// negative or unparsable values fall back to 0 and defaultLimit.
func ParsePagination(r *http.Request, defaultLimit int) (offset, limit int) {
	q := r.URL.Query()

	offset = 0
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
		offset = v
	}

	limit = defaultLimit
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v >= 0 {
		limit = v
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return offset, limit
}
