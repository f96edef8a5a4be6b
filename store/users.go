package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"masterboxer.com/social-feed/models"
)

const userColumns = `id, email, username, profile_image_url, is_verified, created_at, updated_at`

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.ProfileImageURL, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// CreateUserIfNotExists returns the user registered under email, creating it
// on first sight.
func (s *Store) CreateUserIfNotExists(ctx context.Context, email, username string, profileImageURL *string) (models.User, error) {
	u, err := s.GetUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if err != sql.ErrNoRows {
		return models.User{}, err
	}

	return scanUser(s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, username, profile_image_url, is_verified, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		RETURNING `+userColumns,
		uuid.NewString(), email, username, profileImageURL, time.Now().UTC()))
}

// UpdateProfile applies the non-nil fields. Returns sql.ErrNoRows when the
// user does not exist.
func (s *Store) UpdateProfile(ctx context.Context, id string, username, profileImageURL *string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		UPDATE users
		SET username = COALESCE($2, username),
		    profile_image_url = COALESCE($3, profile_image_url),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, username, profileImageURL))
}

func (s *Store) MarkVerified(ctx context.Context, id string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		UPDATE users SET is_verified = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id))
}

// UsersByIDs loads every user whose id is in ids with a single query.
func (s *Store) UsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
