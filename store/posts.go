package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"masterboxer.com/social-feed/models"
)

const postColumns = `id, user_id, title, content, created_at, updated_at, deleted_at`

const mediaColumns = `id, post_id, media_url, media_type, mime_type, width, height, file_size, created_at`

func scanPost(row rowScanner) (models.Post, error) {
	var (
		p         models.Post
		deletedAt *time.Time
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt, &deletedAt)
	p.State = models.StateFromColumn(deletedAt)
	return p, err
}

func scanMedia(row rowScanner) (models.PostMedia, error) {
	var m models.PostMedia
	err := row.Scan(&m.ID, &m.PostID, &m.MediaURL, &m.MediaType, &m.MimeType, &m.Width, &m.Height, &m.FileSize, &m.CreatedAt)
	return m, err
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CreatePost inserts the post and its media rows in one transaction.
func (s *Store) CreatePost(ctx context.Context, userID, title, content string, mediaURLs []string) (models.Post, []models.PostMedia, error) {
	now := time.Now().UTC()
	post := models.Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
	}
	media := make([]models.PostMedia, 0, len(mediaURLs))

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO posts (id, user_id, title, content, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, post.ID, post.UserID, post.Title, post.Content, post.CreatedAt)
		if err != nil {
			return err
		}

		for _, url := range mediaURLs {
			mimeType, kind := models.ClassifyMedia(url)
			m := models.PostMedia{
				ID:        uuid.NewString(),
				PostID:    post.ID,
				MediaURL:  url,
				MediaType: kind,
				MimeType:  mimeType,
				CreatedAt: now,
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO posts_media (id, post_id, media_url, media_type, mime_type, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, m.ID, m.PostID, m.MediaURL, string(m.MediaType), m.MimeType, m.CreatedAt)
			if err != nil {
				return err
			}
			media = append(media, m)
		}
		return nil
	})
	if err != nil {
		return models.Post{}, nil, err
	}

	return post, media, nil
}

func (s *Store) ListPosts(ctx context.Context, offset, limit int) ([]models.Post, error) {
	return s.queryPosts(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2`, offset, limit)
}

func (s *Store) ListPostsByUser(ctx context.Context, userID string, offset, limit int) ([]models.Post, error) {
	return s.queryPosts(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`, userID, offset, limit)
}

func (s *Store) GetPost(ctx context.Context, id string) (models.Post, error) {
	return scanPost(s.db.QueryRowContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE id = $1 AND deleted_at IS NULL`, id))
}

// UpdatePostContent only touches live posts owned by userID.
func (s *Store) UpdatePostContent(ctx context.Context, userID, postID, content string) (models.Post, error) {
	return scanPost(s.db.QueryRowContext(ctx, `
		UPDATE posts SET content = $1, updated_at = NOW()
		WHERE user_id = $2 AND id = $3 AND deleted_at IS NULL
		RETURNING `+postColumns, content, userID, postID))
}

func (s *Store) SoftDeletePost(ctx context.Context, userID, postID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET deleted_at = NOW()
		WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`, userID, postID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// ToggleLike removes the user's like when present and adds it otherwise.
// changed is false when a concurrent toggle already inserted the like, in
// which case the post is liked but this call wrote nothing.
// Returns sql.ErrNoRows when the post does not exist or is deleted.
func (s *Store) ToggleLike(ctx context.Context, userID, postID string) (liked, changed bool, err error) {
	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1 AND deleted_at IS NULL)`, postID).Scan(&exists)
	if err != nil {
		return false, false, err
	}
	if !exists {
		return false, false, sql.ErrNoRows
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, false, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, false, err
	} else if n > 0 {
		return false, true, nil
	}

	res, err = s.db.ExecContext(ctx, `
		INSERT INTO post_likes (id, post_id, user_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (post_id, user_id) DO NOTHING`, uuid.NewString(), postID, userID)
	if err != nil {
		return false, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, false, err
	}
	return true, n > 0, nil
}

// MediaByPostIDs returns every media row for the given posts in one query.
func (s *Store) MediaByPostIDs(ctx context.Context, postIDs []string) ([]models.PostMedia, error) {
	postIDs = dedupe(postIDs)
	if len(postIDs) == 0 {
		return []models.PostMedia{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+mediaColumns+` FROM posts_media
		WHERE post_id = ANY($1)
		ORDER BY created_at`, pq.Array(postIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	media := []models.PostMedia{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

func (s *Store) LikeCountsByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error) {
	return s.countsByPostIDs(ctx, `
		SELECT post_id, COUNT(*) FROM post_likes
		WHERE post_id = ANY($1)
		GROUP BY post_id`, postIDs)
}

func (s *Store) CommentCountsByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error) {
	return s.countsByPostIDs(ctx, `
		SELECT post_id, COUNT(*) FROM post_comments
		WHERE post_id = ANY($1) AND deleted_at IS NULL
		GROUP BY post_id`, postIDs)
}

func (s *Store) countsByPostIDs(ctx context.Context, query string, postIDs []string) (map[string]int64, error) {
	postIDs = dedupe(postIDs)
	counts := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	rows, err := s.db.QueryContext(ctx, query, pq.Array(postIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID string
			count  int64
		)
		if err := rows.Scan(&postID, &count); err != nil {
			return nil, err
		}
		counts[postID] = count
	}
	return counts, rows.Err()
}
