package models

import "time"

type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	ProfileImageURL *string    `json:"profileImageUrl"`
	IsVerified      bool       `json:"isVerified"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt"`
}

type VerificationPin struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	PinHash    string     `json:"-"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (p VerificationPin) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
