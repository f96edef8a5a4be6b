package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"math/big"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"masterboxer.com/social-feed/apperror"
	"masterboxer.com/social-feed/models"
)

const (
	pinMin  = 1000000
	pinSpan = 9000000
)

type AuthStore interface {
	CreateUserIfNotExists(ctx context.Context, email, username string, profileImageURL *string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	MarkVerified(ctx context.Context, id string) (models.User, error)
	CreatePin(ctx context.Context, email, pinHash string, expiresAt time.Time) (models.VerificationPin, error)
	LatestActivePin(ctx context.Context, email string) (models.VerificationPin, error)
	ConsumePin(ctx context.Context, id string) error
}

type Mailer interface {
	SendVerification(ctx context.Context, email, code string) error
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type Limiter interface {
	Allow(key string) bool
}

type AuthService struct {
	store    AuthStore
	mailer   Mailer
	tokens   TokenIssuer
	limiter  Limiter
	pinTTL   time.Duration
	hashCost int
	now      func() time.Time
	log      *zap.SugaredLogger
}

func NewAuthService(store AuthStore, mailer Mailer, tokens TokenIssuer, limiter Limiter, pinTTL time.Duration, log *zap.SugaredLogger) *AuthService {
	return &AuthService{
		store:    store,
		mailer:   mailer,
		tokens:   tokens,
		limiter:  limiter,
		pinTTL:   pinTTL,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
		log:      log,
	}
}

// GeneratePin returns a random seven digit code.
func GeneratePin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pinSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+pinMin, 10), nil
}

// Login registers the user on first sight and mails a fresh verification
// pin. Earlier pins for the same email stop working.
func (s *AuthService) Login(ctx context.Context, email, username string, profileImageURL *string) (models.User, error) {
	if !s.limiter.Allow(email) {
		return models.User{}, apperror.TooManyRequests("Too many login attempts, try again later")
	}

	pin, err := GeneratePin()
	if err != nil {
		return models.User{}, err
	}

	// Hashing overlaps with the user lookup; the pin is only stored once the
	// user exists so a failed registration leaves earlier pins untouched.
	var (
		user models.User
		hash []byte
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		hash, err = bcrypt.GenerateFromPassword([]byte(pin), s.hashCost)
		return err
	})
	g.Go(func() (err error) {
		user, err = s.store.CreateUserIfNotExists(gctx, email, username, profileImageURL)
		if apperror.IsUniqueViolation(err) {
			return apperror.Conflict("Username already exists")
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return models.User{}, err
	}

	if _, err := s.store.CreatePin(ctx, email, string(hash), s.now().Add(s.pinTTL)); err != nil {
		return models.User{}, err
	}

	if err := s.mailer.SendVerification(ctx, email, pin); err != nil {
		s.log.Errorw("send verification mail", "email", email, "error", err)
		return models.User{}, apperror.Internal("Failed to send verification email")
	}

	return user, nil
}

func (s *AuthService) Verify(ctx context.Context, email, pin string) (models.VerifyResult, error) {
	invalid := apperror.BadRequest("Invalid verification pin")

	stored, err := s.store.LatestActivePin(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VerifyResult{}, invalid
	}
	if err != nil {
		return models.VerifyResult{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(stored.PinHash), []byte(pin)) != nil {
		return models.VerifyResult{}, invalid
	}
	if stored.Expired(s.now()) {
		return models.VerifyResult{}, apperror.BadRequest("Verification pin expired")
	}

	if err := s.store.ConsumePin(ctx, stored.ID); errors.Is(err, sql.ErrNoRows) {
		return models.VerifyResult{}, invalid
	} else if err != nil {
		return models.VerifyResult{}, err
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VerifyResult{}, apperror.NotFound("User not found")
	}
	if err != nil {
		return models.VerifyResult{}, err
	}

	if !user.IsVerified {
		if user, err = s.store.MarkVerified(ctx, user.ID); err != nil {
			return models.VerifyResult{}, err
		}
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.VerifyResult{}, err
	}

	return models.VerifyResult{Token: token, User: user}, nil
}
