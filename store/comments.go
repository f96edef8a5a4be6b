package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"masterboxer.com/social-feed/models"
)

const commentColumns = `id, post_id, user_id, parent_id, content, created_at, updated_at, deleted_at`

func scanComment(row rowScanner) (models.PostComment, error) {
	var (
		c         models.PostComment
		deletedAt *time.Time
	)
	err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.ParentID, &c.Content, &c.CreatedAt, &c.UpdatedAt, &deletedAt)
	c.State = models.StateFromColumn(deletedAt)
	return c, err
}

func (s *Store) queryComments(ctx context.Context, query string, args ...any) ([]models.PostComment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.PostComment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ListComments returns live comments on a post. A nil parentID selects top
// level comments, otherwise the direct replies to parentID.
func (s *Store) ListComments(ctx context.Context, postID string, parentID *string, offset, limit int) ([]models.PostComment, error) {
	if parentID == nil {
		return s.queryComments(ctx, `
			SELECT `+commentColumns+` FROM post_comments
			WHERE post_id = $1 AND deleted_at IS NULL AND parent_id IS NULL
			ORDER BY created_at DESC
			OFFSET $2 LIMIT $3`, postID, offset, limit)
	}

	return s.queryComments(ctx, `
		SELECT `+commentColumns+` FROM post_comments
		WHERE post_id = $1 AND deleted_at IS NULL AND parent_id = $2
		ORDER BY created_at DESC
		OFFSET $3 LIMIT $4`, postID, *parentID, offset, limit)
}

func (s *Store) ListCommentsByUser(ctx context.Context, userID string, offset, limit int) ([]models.PostComment, error) {
	return s.queryComments(ctx, `
		SELECT `+commentColumns+` FROM post_comments
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`, userID, offset, limit)
}

func (s *Store) GetComment(ctx context.Context, id string) (models.PostComment, error) {
	return scanComment(s.db.QueryRowContext(ctx, `
		SELECT `+commentColumns+` FROM post_comments
		WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (s *Store) CreateComment(ctx context.Context, userID, postID string, parentID *string, content string) (models.PostComment, error) {
	return scanComment(s.db.QueryRowContext(ctx, `
		INSERT INTO post_comments (id, post_id, user_id, parent_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+commentColumns,
		uuid.NewString(), postID, userID, parentID, content, time.Now().UTC()))
}

func (s *Store) UpdateComment(ctx context.Context, userID, commentID, content string) (models.PostComment, error) {
	return scanComment(s.db.QueryRowContext(ctx, `
		UPDATE post_comments SET content = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL
		RETURNING `+commentColumns, content, commentID, userID))
}

func (s *Store) SoftDeleteComment(ctx context.Context, userID, commentID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE post_comments SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, commentID, userID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
