package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"masterboxer.com/social-feed/apperror"
	"masterboxer.com/social-feed/models"
)

type CommentService interface {
	ListForPost(ctx context.Context, postID string, parentID *string, offset, limit int) ([]models.PostCommentDetails, error)
	ListForUser(ctx context.Context, userID string, offset, limit int) ([]models.PostCommentDetails, error)
	Create(ctx context.Context, userID, postID string, parentID *string, content string) (models.PostComment, error)
	Update(ctx context.Context, userID, commentID, content string) (models.PostComment, error)
	Delete(ctx context.Context, userID, commentID string) error
}

type createCommentRequest struct {
	PostID   string  `json:"postId" validate:"required"`
	ParentID *string `json:"parentId" validate:"omitempty,min=1"`
	Content  string  `json:"content" validate:"required,min=1,max=10000"`
}

type updateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=10000"`
}

func GetPostComments(svc CommentService, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit := ParsePagination(r, defaultLimit)

		var parentID *string
		if p := r.URL.Query().Get("parentId"); p != "" {
			parentID = &p
		}

		comments, err := svc.ListForPost(r.Context(), mux.Vars(r)["post_id"], parentID, offset, limit)
		if err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, comments)
	}
}

func GetUserComments(svc CommentService, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit := ParsePagination(r, defaultLimit)

		comments, err := svc.ListForUser(r.Context(), mux.Vars(r)["user_id"], offset, limit)
		if err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, comments)
	}
}

func CreateComment(svc CommentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req createCommentRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		comment, err := svc.Create(r.Context(), userID, req.PostID, req.ParentID, req.Content)
		if err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, comment)
	}
}

func UpdateComment(svc CommentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req updateCommentRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		comment, err := svc.Update(r.Context(), userID, mux.Vars(r)["comment_id"], req.Content)
		if err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, comment)
	}
}

func DeleteComment(svc CommentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), userID, mux.Vars(r)["comment_id"]); err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]any{
			"success": true,
			"message": "Comment deleted successfully",
		})
	}
}
