package handlers

import (
	"context"
	"net/http"
	"strings"

	"masterboxer.com/social-feed/apperror"
	"masterboxer.com/social-feed/models"
)

type AuthService interface {
	Login(ctx context.Context, email, username string, profileImageURL *string) (models.User, error)
	Verify(ctx context.Context, email, pin string) (models.VerifyResult, error)
}

type loginRequest struct {
	Email           string  `json:"email" validate:"required,email"`
	Username        string  `json:"username" validate:"required,min=1,max=50"`
	ProfileImageURL *string `json:"profileImageUrl" validate:"omitempty,url"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Pin   string `json:"pin" validate:"required"`
}

func Login(svc AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		user, err := svc.Login(r.Context(), strings.ToLower(req.Email), req.Username, req.ProfileImageURL)
		if err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

func Verify(svc AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		res, err := svc.Verify(r.Context(), strings.ToLower(req.Email), strings.TrimSpace(req.Pin))
		if err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}
