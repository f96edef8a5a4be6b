package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func serveNormalized(h http.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	Normalize(zap.NewNop().Sugar())(h).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNormalizeWrapsPlainText(t *testing.T) {
	rec := serveNormalized(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, float64(400), body["status"])
	assert.Equal(t, "Invalid request body", body["message"])
}

func TestNormalizeJSONBodies(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
		errors  int
	}{
		{"message field", `{"message":"Post not found"}`, 404, "Post not found", 0},
		{"error field fallback", `{"error":"bad thing"}`, 422, "bad thing", 0},
		{"status text fallback", `{"detail":1}`, 409, "Conflict", 0},
		{"keeps field errors", `{"status":400,"message":"Validation failed","errors":[{"field":"title","message":"title is required"}]}`, 400, "Validation failed", 1},
		{"drops malformed errors", `{"message":"x","errors":"nope"}`, 400, "x", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveNormalized(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, float64(tt.status), body["status"])
			assert.Equal(t, tt.message, body["message"])
			if tt.errors == 0 {
				assert.NotContains(t, body, "errors")
			} else {
				assert.Len(t, body["errors"], tt.errors)
			}
		})
	}
}

func TestNormalizeNonObjectJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"string", `"oops"`, "oops"},
		{"padded string", `"  gone away "`, "gone away"},
		{"blank string", `"   "`, "Bad Request"},
		{"null", `null`, "Bad Request"},
		{"array", `[1,2]`, "[1,2]"},
		{"number", `42`, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveNormalized(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			})

			assert.JSONEq(t, `{"status":400,"message":`+strconv.Quote(tt.message)+`}`, rec.Body.String())
		})
	}
}

func TestNormalizeEmptyErrorBody(t *testing.T) {
	rec := serveNormalized(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	body := decode(t, rec)
	assert.Equal(t, "Forbidden", body["message"])
}

func TestNormalizePassesSuccessThrough(t *testing.T) {
	rec := serveNormalized(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("created"))
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "created", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))

	rec = serveNormalized(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("OK"))
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
