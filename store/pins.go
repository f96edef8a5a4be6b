package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"masterboxer.com/social-feed/models"
)

const pinColumns = `id, email, pin_hash, expires_at, consumed_at, created_at`

func scanPin(row rowScanner) (models.VerificationPin, error) {
	var p models.VerificationPin
	err := row.Scan(&p.ID, &p.Email, &p.PinHash, &p.ExpiresAt, &p.ConsumedAt, &p.CreatedAt)
	return p, err
}

// CreatePin stores a new pin hash and retires every earlier unconsumed pin
// for the same email.
func (s *Store) CreatePin(ctx context.Context, email, pinHash string, expiresAt time.Time) (models.VerificationPin, error) {
	pin := models.VerificationPin{
		ID:        uuid.NewString(),
		Email:     email,
		PinHash:   pinHash,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := retirePins(ctx, tx, email); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO verification_pins (id, email, pin_hash, expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, pin.ID, pin.Email, pin.PinHash, pin.ExpiresAt, pin.CreatedAt)
		return err
	})
	if err != nil {
		return models.VerificationPin{}, err
	}
	return pin, nil
}

func retirePins(ctx context.Context, ex execer, email string) error {
	_, err := ex.ExecContext(ctx, `
		UPDATE verification_pins SET consumed_at = NOW()
		WHERE email = $1 AND consumed_at IS NULL`, email)
	return err
}

func (s *Store) LatestActivePin(ctx context.Context, email string) (models.VerificationPin, error) {
	return scanPin(s.db.QueryRowContext(ctx, `
		SELECT `+pinColumns+` FROM verification_pins
		WHERE email = $1 AND consumed_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`, email))
}

// ConsumePin marks the pin used. Returns sql.ErrNoRows when another request
// consumed it first.
func (s *Store) ConsumePin(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE verification_pins SET consumed_at = NOW()
		WHERE id = $1 AND consumed_at IS NULL`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// DeleteStalePins removes pins that expired or were consumed before cutoff.
func (s *Store) DeleteStalePins(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM verification_pins
		WHERE expires_at < $1 OR consumed_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
