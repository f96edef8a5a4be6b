package handlers

import (
	"context"
	"net/http"

	"masterboxer.com/social-feed/apperror"
	"masterboxer.com/social-feed/models"
)

type UserService interface {
	Me(ctx context.Context, userID string) (models.User, error)
	UpdateProfile(ctx context.Context, userID string, username, profileImageURL *string) (models.User, error)
	RegisterDeviceToken(ctx context.Context, userID, token string) error
}

type updateProfileRequest struct {
	Username        *string `json:"username" validate:"omitempty,min=1,max=50"`
	ProfileImageURL *string `json:"profileImageUrl" validate:"omitempty,url"`
}

type deviceTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

func GetMe(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		user, err := svc.Me(r.Context(), userID)
		if err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

func UpdateProfile(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req updateProfileRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		user, err := svc.UpdateProfile(r.Context(), userID, req.Username, req.ProfileImageURL)
		if err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

func RegisterDeviceToken(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req deviceTokenRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		if err := svc.RegisterDeviceToken(r.Context(), userID, req.Token); err != nil {
			apperror.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Device token registered successfully",
		})
	}
}
