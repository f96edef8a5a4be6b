package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"masterboxer.com/social-feed/auth"
)

type stubResolver map[string]string

func (s stubResolver) Resolve(token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", errors.New("invalid")
}

func TestAuthGate(t *testing.T) {
	table := NewExclusionTable(Exclusion{"GET", "/posts/{post_id}"})
	resolver := stubResolver{"good": "user-1"}

	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		wantStatus int
		wantCalled bool
		wantUser   string
	}{
		{"excluded without credential", "GET", "/posts/p1", "", 200, true, ""},
		{"excluded with garbage credential", "GET", "/posts/p1", "Bearer nope", 200, true, ""},
		{"missing header", "PATCH", "/posts/p1", "", 401, false, ""},
		{"wrong scheme", "PATCH", "/posts/p1", "Basic good", 401, false, ""},
		{"empty token", "PATCH", "/posts/p1", "Bearer ", 401, false, ""},
		{"invalid token", "PATCH", "/posts/p1", "Bearer nope", 401, false, ""},
		{"valid token", "PATCH", "/posts/p1", "Bearer good", 200, true, "user-1"},
		{"case insensitive scheme", "PATCH", "/posts/p1", "bearer good", 200, true, "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			var gotUser string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotUser, _ = auth.UserID(r.Context())
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			AuthGate(resolver, table)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, tt.wantUser, gotUser)

			if tt.wantStatus == http.StatusUnauthorized {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, float64(401), body["status"])
				assert.Equal(t, "Unauthorized", body["message"])
			}
		})
	}
}
