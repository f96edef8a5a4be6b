package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidCredential is returned for every token that cannot be trusted:
// bad signature, expiry, malformed input, or missing claims.
var ErrInvalidCredential = errors.New("invalid credential")

type Resolver struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewResolver(secret string, ttl time.Duration) *Resolver {
	return &Resolver{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

func (r *Resolver) Issue(userID string) (string, error) {
	now := r.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(r.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(r.secret)
}

// Resolve verifies the token and returns its subject.
func (r *Resolver) Resolve(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := r.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return r.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidCredential
	}

	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(r.now()) {
		return "", ErrInvalidCredential
	}
	if claims.Subject == "" {
		return "", ErrInvalidCredential
	}

	return claims.Subject, nil
}
