package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"masterboxer.com/social-feed/auth"
	"masterboxer.com/social-feed/events"
	"masterboxer.com/social-feed/metrics"
	"masterboxer.com/social-feed/services"
	"masterboxer.com/social-feed/store"
)

type testServer struct {
	router   http.Handler
	mock     sqlmock.Sqlmock
	resolver *auth.Resolver
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)

	log := zap.NewNop().Sugar()
	st := store.New(db)
	agg := services.NewAggregator(st, log)
	resolver := auth.NewResolver("test-secret", time.Hour)

	router := NewRouter(Options{
		Posts:     services.NewPostService(st, agg, services.NopNotifier{}, events.Nop{}, log),
		Comments:  services.NewCommentService(st, agg, services.NopNotifier{}, events.Nop{}, log),
		Users:     services.NewUserService(st),
		Auth:      services.NewAuthService(st, nil, resolver, nil, time.Minute, log),
		Resolver:  resolver,
		Metrics:   metrics.New(),
		PageLimit: 20,
		Log:       log,
	})

	return &testServer{router: router, mock: mock, resolver: resolver}
}

func (s *testServer) do(t *testing.T, method, path, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != "" {
		token, err := s.resolver.Issue(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, "GET", "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestUnmatchedRoutesSkipAuth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, "GET", "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":404,"message":"Not Found"}`, rec.Body.String())

	rec = srv.do(t, "PUT", "/posts", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"status":405,"message":"Method not allowed"}`, rec.Body.String())
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, "POST", "/posts", `{"title":"a","content":"b"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"status":401,"message":"Unauthorized"}`, rec.Body.String())

	rec = srv.do(t, "GET", "/user/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, srv.mock.ExpectationsWereMet())
}

func TestPublicListNeedsNoToken(t *testing.T) {
	srv := newTestServer(t)
	srv.mock.ExpectQuery(regexp.QuoteMeta("FROM posts")).
		WithArgs(0, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "content", "created_at", "updated_at", "deleted_at"}))

	rec := srv.do(t, "GET", "/posts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	require.NoError(t, srv.mock.ExpectationsWereMet())
}

func TestCreateThenGetPost(t *testing.T) {
	srv := newTestServer(t)
	now := time.Now().UTC()

	srv.mock.ExpectBegin()
	srv.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO posts (")).
		WithArgs(sqlmock.AnyArg(), "u1", "Hello", "World", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	srv.mock.ExpectCommit()

	rec := srv.do(t, "POST", "/posts", `{"title":"Hello","content":"World"}`, "u1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Post struct {
			ID     string `json:"id"`
			UserID string `json:"userId"`
		} `json:"post"`
		Media []any `json:"media"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.Post.ID)
	assert.Equal(t, "u1", created.Post.UserID)
	assert.Empty(t, created.Media)

	postID := created.Post.ID
	srv.mock.ExpectQuery(`FROM posts\s+WHERE id = \$1`).
		WithArgs(postID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "content", "created_at", "updated_at", "deleted_at"}).
			AddRow(postID, "u1", "Hello", "World", now, nil, nil))
	srv.mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ANY")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "profile_image_url", "is_verified", "created_at", "updated_at"}).
			AddRow("u1", "ann@example.com", "ann", nil, true, now, nil))
	srv.mock.ExpectQuery(regexp.QuoteMeta("FROM posts_media")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "media_url", "media_type", "mime_type", "width", "height", "file_size", "created_at"}))
	srv.mock.ExpectQuery(regexp.QuoteMeta("FROM post_likes")).
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "count"}))
	srv.mock.ExpectQuery(regexp.QuoteMeta("FROM post_comments")).
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "count"}))

	rec = srv.do(t, "GET", "/posts/"+postID, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var details map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	assert.Equal(t, postID, details["id"])
	assert.Equal(t, "ann", details["author"].(map[string]any)["username"])
	assert.Equal(t, []any{}, details["media"])
	assert.EqualValues(t, 0, details["likesCount"])
	assert.EqualValues(t, 0, details["commentsCount"])
	require.NoError(t, srv.mock.ExpectationsWereMet())
}

func TestMetricsEndpointIsPublic(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, "GET", "/", "", "")

	rec := srv.do(t, "GET", "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `social_feed_http_requests_total{method="GET",path="/",status="200"} 1`)
}
