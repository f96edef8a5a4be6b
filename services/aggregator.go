package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"masterboxer.com/social-feed/models"
)

// ErrAuthorMissing means a post or comment references a user that no longer
// exists. It is a data integrity fault, not a client error.
var ErrAuthorMissing = errors.New("author not found")

// BatchFetcher loads related rows for many parents at once. Each call issues
// at most one query and none for an empty key set.
type BatchFetcher interface {
	UsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	MediaByPostIDs(ctx context.Context, postIDs []string) ([]models.PostMedia, error)
	LikeCountsByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error)
	CommentCountsByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error)
}

type Aggregator struct {
	fetch BatchFetcher
	log   *zap.SugaredLogger
}

func NewAggregator(fetch BatchFetcher, log *zap.SugaredLogger) *Aggregator {
	return &Aggregator{fetch: fetch, log: log}
}

// PostDetails joins posts with authors, media and counts. Deleted posts are
// dropped; the rest keep their input order.
func (a *Aggregator) PostDetails(ctx context.Context, posts []models.Post) ([]models.PostDetails, error) {
	posts = activePosts(posts)
	if len(posts) == 0 {
		return []models.PostDetails{}, nil
	}

	userIDs := make([]string, len(posts))
	postIDs := make([]string, len(posts))
	for i, p := range posts {
		userIDs[i] = p.UserID
		postIDs[i] = p.ID
	}

	var (
		users         []models.User
		media         []models.PostMedia
		likeCounts    map[string]int64
		commentCounts map[string]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = a.fetch.UsersByIDs(gctx, userIDs)
		return err
	})
	g.Go(func() (err error) {
		media, err = a.fetch.MediaByPostIDs(gctx, postIDs)
		return err
	})
	g.Go(func() (err error) {
		likeCounts, err = a.fetch.LikeCountsByPostIDs(gctx, postIDs)
		return err
	})
	g.Go(func() (err error) {
		commentCounts, err = a.fetch.CommentCountsByPostIDs(gctx, postIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	usersByID := indexUsers(users)
	mediaByPost := make(map[string][]models.PostMedia, len(posts))
	for _, m := range media {
		mediaByPost[m.PostID] = append(mediaByPost[m.PostID], m)
	}

	details := make([]models.PostDetails, len(posts))
	for i, p := range posts {
		author, ok := usersByID[p.UserID]
		if !ok {
			a.log.Errorw("post author missing", "postId", p.ID, "userId", p.UserID)
			return nil, fmt.Errorf("post %s: %w", p.ID, ErrAuthorMissing)
		}

		postMedia := mediaByPost[p.ID]
		if postMedia == nil {
			postMedia = []models.PostMedia{}
		}

		details[i] = models.PostDetails{
			Post:          p,
			Author:        author,
			Media:         postMedia,
			LikesCount:    likeCounts[p.ID],
			CommentsCount: commentCounts[p.ID],
		}
	}

	return details, nil
}

func (a *Aggregator) CommentDetails(ctx context.Context, comments []models.PostComment) ([]models.PostCommentDetails, error) {
	comments = activeComments(comments)
	if len(comments) == 0 {
		return []models.PostCommentDetails{}, nil
	}

	userIDs := make([]string, len(comments))
	for i, c := range comments {
		userIDs[i] = c.UserID
	}

	users, err := a.fetch.UsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	usersByID := indexUsers(users)

	details := make([]models.PostCommentDetails, len(comments))
	for i, c := range comments {
		author, ok := usersByID[c.UserID]
		if !ok {
			a.log.Errorw("comment author missing", "commentId", c.ID, "userId", c.UserID)
			return nil, fmt.Errorf("comment %s: %w", c.ID, ErrAuthorMissing)
		}
		details[i] = models.PostCommentDetails{PostComment: c, Author: author}
	}

	return details, nil
}

// activePosts drops deleted posts, keeping the order of the rest.
func activePosts(posts []models.Post) []models.Post {
	out := posts[:0:0]
	for _, p := range posts {
		if p.State.IsActive() {
			out = append(out, p)
		}
	}
	return out
}

func activeComments(comments []models.PostComment) []models.PostComment {
	out := comments[:0:0]
	for _, c := range comments {
		if c.State.IsActive() {
			out = append(out, c)
		}
	}
	return out
}

func indexUsers(users []models.User) map[string]models.User {
	m := make(map[string]models.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return m
}
