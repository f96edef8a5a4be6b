package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"
	"masterboxer.com/social-feed/apperror"
	"masterboxer.com/social-feed/events"
	"masterboxer.com/social-feed/models"
)

type PostStore interface {
	BatchFetcher
	CreatePost(ctx context.Context, userID, title, content string, mediaURLs []string) (models.Post, []models.PostMedia, error)
	ListPosts(ctx context.Context, offset, limit int) ([]models.Post, error)
	ListPostsByUser(ctx context.Context, userID string, offset, limit int) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (models.Post, error)
	UpdatePostContent(ctx context.Context, userID, postID, content string) (models.Post, error)
	SoftDeletePost(ctx context.Context, userID, postID string) error
	ToggleLike(ctx context.Context, userID, postID string) (liked, changed bool, err error)
}

type PostService struct {
	store    PostStore
	agg      *Aggregator
	notifier Notifier
	events   events.Publisher
	log      *zap.SugaredLogger
}

func NewPostService(store PostStore, agg *Aggregator, notifier Notifier, pub events.Publisher, log *zap.SugaredLogger) *PostService {
	return &PostService{store: store, agg: agg, notifier: notifier, events: pub, log: log}
}

func errPostNotFound() error { return apperror.NotFound("Post not found") }

func (s *PostService) Create(ctx context.Context, userID, title, content string, mediaURLs []string) (models.CreatePostResult, error) {
	post, media, err := s.store.CreatePost(ctx, userID, title, content, mediaURLs)
	if err != nil {
		return models.CreatePostResult{}, err
	}

	s.events.Publish(events.SubjectPostCreated, events.PostCreatedEvent{
		PostID:     post.ID,
		AuthorID:   post.UserID,
		Title:      post.Title,
		MediaCount: len(media),
		Timestamp:  post.CreatedAt,
	})

	return models.CreatePostResult{Post: post, Media: media}, nil
}

func (s *PostService) List(ctx context.Context, offset, limit int) ([]models.PostDetails, error) {
	posts, err := s.store.ListPosts(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.agg.PostDetails(ctx, posts)
}

func (s *PostService) ListByUser(ctx context.Context, userID string, offset, limit int) ([]models.PostDetails, error) {
	posts, err := s.store.ListPostsByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.agg.PostDetails(ctx, posts)
}

func (s *PostService) Get(ctx context.Context, postID string) (models.PostDetails, error) {
	post, err := s.store.GetPost(ctx, postID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !post.State.IsActive()) {
		return models.PostDetails{}, errPostNotFound()
	}
	if err != nil {
		return models.PostDetails{}, err
	}

	details, err := s.agg.PostDetails(ctx, []models.Post{post})
	if err != nil {
		return models.PostDetails{}, err
	}
	return details[0], nil
}

// Update changes the content of a post owned by userID. Posts owned by
// someone else are reported as missing.
func (s *PostService) Update(ctx context.Context, userID, postID, content string) (models.Post, error) {
	post, err := s.store.UpdatePostContent(ctx, userID, postID, content)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, errPostNotFound()
	}
	return post, err
}

func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	err := s.store.SoftDeletePost(ctx, userID, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return errPostNotFound()
	}
	return err
}

// ToggleLike flips the user's like. Events and notifications only go out
// when this call actually changed the like.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	liked, changed, err := s.store.ToggleLike(ctx, userID, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, errPostNotFound()
	}
	if err != nil {
		return false, err
	}
	if !changed {
		return liked, nil
	}

	s.events.Publish(events.SubjectPostLiked, events.PostLikedEvent{
		PostID:    postID,
		UserID:    userID,
		Liked:     liked,
		Timestamp: time.Now().UTC(),
	})
	if liked {
		s.notifier.PostLiked(postID, userID)
	}

	return liked, nil
}
