package database

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`DO $$ BEGIN
		CREATE TYPE media_type AS ENUM ('image', 'video', 'document', 'audio', 'other');
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`,

	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		profile_image_url TEXT,
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS verification_pins (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		pin_hash TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		consumed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS verification_pins_email_idx ON verification_pins (email, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ,
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS posts_user_created_idx ON posts (user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS posts_media (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id),
		media_url TEXT NOT NULL,
		media_type media_type NOT NULL,
		mime_type TEXT NOT NULL,
		width INTEGER,
		height INTEGER,
		file_size INTEGER,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS posts_media_post_idx ON posts_media (post_id)`,

	`CREATE TABLE IF NOT EXISTS post_likes (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (post_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS post_comments (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		parent_id TEXT REFERENCES post_comments(id),
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ,
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS post_comments_post_idx ON post_comments (post_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS device_tokens (
		user_id TEXT NOT NULL REFERENCES users(id),
		token TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, token)
	)`,
}

// Migrate applies the schema. Every statement is idempotent so it runs on
// each boot.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
