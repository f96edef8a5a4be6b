package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"masterboxer.com/social-feed/apperror"
	"masterboxer.com/social-feed/models"
)

type PostService interface {
	Create(ctx context.Context, userID, title, content string, mediaURLs []string) (models.CreatePostResult, error)
	List(ctx context.Context, offset, limit int) ([]models.PostDetails, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]models.PostDetails, error)
	Get(ctx context.Context, postID string) (models.PostDetails, error)
	Update(ctx context.Context, userID, postID, content string) (models.Post, error)
	Delete(ctx context.Context, userID, postID string) error
	ToggleLike(ctx context.Context, userID, postID string) (bool, error)
}

type createPostRequest struct {
	Title   string   `json:"title" validate:"required,min=1,max=100"`
	Content string   `json:"content" validate:"required,min=1"`
	Media   []string `json:"media" validate:"omitempty,max=10,dive,required"`
}

type updatePostRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

func CreatePost(svc PostService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req createPostRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		res, err := svc.Create(r.Context(), userID, req.Title, req.Content, req.Media)
		if err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, res)
	}
}

func GetPosts(svc PostService, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit := ParsePagination(r, defaultLimit)

		posts, err := svc.List(r.Context(), offset, limit)
		if err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, posts)
	}
}

func GetPostsByUser(svc PostService, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mux.Vars(r)["user_id"]
		offset, limit := ParsePagination(r, defaultLimit)

		posts, err := svc.ListByUser(r.Context(), userID, offset, limit)
		if err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, posts)
	}
}

func GetPost(svc PostService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := svc.Get(r.Context(), mux.Vars(r)["post_id"])
		if err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, post)
	}
}

func UpdatePost(svc PostService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req updatePostRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		post, err := svc.Update(r.Context(), userID, mux.Vars(r)["post_id"], req.Content)
		if err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, post)
	}
}

func DeletePost(svc PostService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), userID, mux.Vars(r)["post_id"]); err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]any{
			"success": true,
			"message": "Post deleted successfully",
		})
	}
}

func ToggleLike(svc PostService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		liked, err := svc.ToggleLike(r.Context(), userID, mux.Vars(r)["post_id"])
		if err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"liked":   liked,
		})
	}
}
