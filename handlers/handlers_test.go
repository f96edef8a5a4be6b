package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"masterboxer.com/social-feed/apperror"
	"masterboxer.com/social-feed/auth"
	"masterboxer.com/social-feed/models"
)

type fakePostService struct {
	created    []string
	lastOffset int
	lastLimit  int
	liked      bool
	err        error
}

func (f *fakePostService) Create(_ context.Context, userID, title, content string, media []string) (models.CreatePostResult, error) {
	f.created = append(f.created, title)
	return models.CreatePostResult{
		Post:  models.Post{ID: "p1", UserID: userID, Title: title, Content: content},
		Media: []models.PostMedia{},
	}, f.err
}

func (f *fakePostService) List(_ context.Context, offset, limit int) ([]models.PostDetails, error) {
	f.lastOffset, f.lastLimit = offset, limit
	return []models.PostDetails{}, f.err
}

func (f *fakePostService) ListByUser(_ context.Context, _ string, offset, limit int) ([]models.PostDetails, error) {
	f.lastOffset, f.lastLimit = offset, limit
	return []models.PostDetails{}, f.err
}

func (f *fakePostService) Get(_ context.Context, postID string) (models.PostDetails, error) {
	if f.err != nil {
		return models.PostDetails{}, f.err
	}
	return models.PostDetails{Post: models.Post{ID: postID}, Media: []models.PostMedia{}}, nil
}

func (f *fakePostService) Update(_ context.Context, userID, postID, content string) (models.Post, error) {
	return models.Post{ID: postID, UserID: userID, Content: content}, f.err
}

func (f *fakePostService) Delete(context.Context, string, string) error { return f.err }

func (f *fakePostService) ToggleLike(context.Context, string, string) (bool, error) {
	return f.liked, f.err
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(auth.WithUserID(r.Context(), userID))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query      string
		wantOffset int
		wantLimit  int
	}{
		{"", 0, 20},
		{"offset=10&limit=5", 10, 5},
		{"offset=-3&limit=-1", 0, 20},
		{"offset=abc&limit=xyz", 0, 20},
		{"limit=0", 0, 0},
		{"limit=5000", 0, maxPageLimit},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/posts?"+tt.query, nil)
			offset, limit := ParsePagination(r, 20)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestCreatePost(t *testing.T) {
	svc := &fakePostService{}
	h := CreatePost(svc)

	t.Run("created", func(t *testing.T) {
		req := withUser(httptest.NewRequest(http.MethodPost, "/posts",
			strings.NewReader(`{"title":"Hello","content":"World"}`)), "u1")
		rec := httptest.NewRecorder()
		h(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "u1", body["post"].(map[string]any)["userId"])
		assert.Equal(t, []any{}, body["media"])
	})

	t.Run("validation failure lists fields", func(t *testing.T) {
		req := withUser(httptest.NewRequest(http.MethodPost, "/posts",
			strings.NewReader(`{"title":"","content":"World"}`)), "u1")
		rec := httptest.NewRecorder()
		h(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Validation failed", body["message"])
		errs := body["errors"].([]any)
		require.Len(t, errs, 1)
		assert.Equal(t, "title", errs[0].(map[string]any)["field"])
	})

	t.Run("malformed body", func(t *testing.T) {
		req := withUser(httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{`)), "u1")
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body\n", rec.Body.String())
	})

	t.Run("no identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"title":"a","content":"b"}`))
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	assert.Equal(t, []string{"Hello"}, svc.created)
}

func TestGetPostsUsesPagination(t *testing.T) {
	svc := &fakePostService{}
	rec := httptest.NewRecorder()
	GetPosts(svc, 20)(rec, httptest.NewRequest(http.MethodGet, "/posts?offset=4&limit=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, 4, svc.lastOffset)
	assert.Equal(t, 2, svc.lastLimit)
}

func TestGetPostNotFound(t *testing.T) {
	svc := &fakePostService{err: apperror.NotFound("Post not found")}
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/posts/missing", nil), map[string]string{"post_id": "missing"})
	rec := httptest.NewRecorder()
	GetPost(svc)(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":404,"message":"Post not found"}`, rec.Body.String())
}

func TestDeletePost(t *testing.T) {
	req := mux.SetURLVars(withUser(httptest.NewRequest(http.MethodDelete, "/posts/p1", nil), "u1"),
		map[string]string{"post_id": "p1"})
	rec := httptest.NewRecorder()
	DeletePost(&fakePostService{})(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Post deleted successfully"}`, rec.Body.String())
}

func TestToggleLike(t *testing.T) {
	req := mux.SetURLVars(withUser(httptest.NewRequest(http.MethodPost, "/posts/p1/like", nil), "u1"),
		map[string]string{"post_id": "p1"})
	rec := httptest.NewRecorder()
	ToggleLike(&fakePostService{liked: true})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"liked":true}`, rec.Body.String())
}

type fakeCommentService struct {
	parentID *string
	err      error
}

func (f *fakeCommentService) ListForPost(_ context.Context, _ string, parentID *string, _, _ int) ([]models.PostCommentDetails, error) {
	f.parentID = parentID
	return []models.PostCommentDetails{}, f.err
}

func (f *fakeCommentService) ListForUser(context.Context, string, int, int) ([]models.PostCommentDetails, error) {
	return []models.PostCommentDetails{}, f.err
}

func (f *fakeCommentService) Create(_ context.Context, userID, postID string, parentID *string, content string) (models.PostComment, error) {
	return models.PostComment{ID: "c1", PostID: postID, UserID: userID, ParentID: parentID, Content: content}, f.err
}

func (f *fakeCommentService) Update(_ context.Context, userID, commentID, content string) (models.PostComment, error) {
	return models.PostComment{ID: commentID, UserID: userID, Content: content}, f.err
}

func (f *fakeCommentService) Delete(context.Context, string, string) error { return f.err }

func TestGetPostCommentsParentFilter(t *testing.T) {
	svc := &fakeCommentService{}

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/comments/post/p1?parentId=c9", nil),
		map[string]string{"post_id": "p1"})
	rec := httptest.NewRecorder()
	GetPostComments(svc, 20)(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.parentID)
	assert.Equal(t, "c9", *svc.parentID)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/comments/post/p1", nil),
		map[string]string{"post_id": "p1"})
	rec = httptest.NewRecorder()
	GetPostComments(svc, 20)(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.parentID)
}

func TestCreateComment(t *testing.T) {
	req := withUser(httptest.NewRequest(http.MethodPost, "/comments",
		strings.NewReader(`{"postId":"p1","parentId":"c0","content":"nice"}`)), "u2")
	rec := httptest.NewRecorder()
	CreateComment(&fakeCommentService{})(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "p1", body["postId"])
	assert.Equal(t, "c0", body["parentId"])
	assert.Equal(t, "u2", body["userId"])
}

func TestDeleteCommentPropagatesNotFound(t *testing.T) {
	req := mux.SetURLVars(withUser(httptest.NewRequest(http.MethodDelete, "/comments/c1", nil), "u1"),
		map[string]string{"comment_id": "c1"})
	rec := httptest.NewRecorder()
	DeleteComment(&fakeCommentService{err: apperror.NotFound("Comment not found")})(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeUserService struct {
	token string
}

func (f *fakeUserService) Me(_ context.Context, userID string) (models.User, error) {
	return models.User{ID: userID, Email: "a@b.co", Username: "ann"}, nil
}

func (f *fakeUserService) UpdateProfile(_ context.Context, userID string, username, _ *string) (models.User, error) {
	u := models.User{ID: userID}
	if username != nil {
		u.Username = *username
	}
	return u, nil
}

func (f *fakeUserService) RegisterDeviceToken(_ context.Context, _, token string) error {
	f.token = token
	return nil
}

func TestUserHandlers(t *testing.T) {
	svc := &fakeUserService{}

	rec := httptest.NewRecorder()
	GetMe(svc)(rec, withUser(httptest.NewRequest(http.MethodGet, "/users/me", nil), "u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ann", decode(t, rec)["username"])

	rec = httptest.NewRecorder()
	UpdateProfile(svc)(rec, withUser(httptest.NewRequest(http.MethodPatch, "/users/me",
		strings.NewReader(`{"profileImageUrl":"not a url"}`)), "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	RegisterDeviceToken(svc)(rec, withUser(httptest.NewRequest(http.MethodPost, "/users/device-tokens",
		strings.NewReader(`{"token":"fcm-1"}`)), "u1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fcm-1", svc.token)
}

type fakeAuthService struct {
	email string
	err   error
}

func (f *fakeAuthService) Login(_ context.Context, email, username string, _ *string) (models.User, error) {
	f.email = email
	return models.User{ID: "u1", Email: email, Username: username}, f.err
}

func (f *fakeAuthService) Verify(_ context.Context, email, _ string) (models.VerifyResult, error) {
	return models.VerifyResult{Token: "jwt", User: models.User{ID: "u1", Email: email}}, f.err
}

func TestLogin(t *testing.T) {
	svc := &fakeAuthService{}

	rec := httptest.NewRecorder()
	Login(svc)(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"Ann@Example.com","username":"ann"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ann@example.com", svc.email)

	rec = httptest.NewRecorder()
	Login(svc)(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"nope","username":"ann"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode(t, rec)["errors"].([]any)
	assert.Equal(t, "email", errs[0].(map[string]any)["field"])
}

func TestVerifyPropagatesServiceError(t *testing.T) {
	svc := &fakeAuthService{err: apperror.Unauthorized("Invalid verification pin")}
	rec := httptest.NewRecorder()
	Verify(svc)(rec, httptest.NewRequest(http.MethodPost, "/auth/verify",
		strings.NewReader(`{"email":"ann@example.com","pin":"1234567"}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"status":401,"message":"Invalid verification pin"}`, rec.Body.String())
}

type fakeUploader struct {
	filename    string
	contentType string
	size        int
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, data []byte, filename, contentType string) (string, error) {
	f.filename, f.contentType, f.size = filename, contentType, len(data)
	return "http://files/" + filename, f.err
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadFile(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")

	t.Run("stored", func(t *testing.T) {
		store := &fakeUploader{}
		body, ct := multipartBody(t, "file", "cat.png", png)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		UploadFile(store, 1<<20, zap.NewNop().Sugar())(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"url":"http://files/cat.png"}`, rec.Body.String())
		assert.Equal(t, "image/png", store.contentType)
		assert.Equal(t, len(png), store.size)
	})

	t.Run("missing field", func(t *testing.T) {
		body, ct := multipartBody(t, "other", "cat.png", png)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		UploadFile(&fakeUploader{}, 1<<20, zap.NewNop().Sugar())(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"status":400,"message":"File field is required"}`, rec.Body.String())
	})

	t.Run("backend failure", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "cat.png", png)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		UploadFile(&fakeUploader{err: errors.New("disk full")}, 1<<20, zap.NewNop().Sugar())(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
