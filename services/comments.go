package services

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
	"masterboxer.com/social-feed/apperror"
	"masterboxer.com/social-feed/events"
	"masterboxer.com/social-feed/models"
)

type CommentStore interface {
	GetPost(ctx context.Context, id string) (models.Post, error)
	GetComment(ctx context.Context, id string) (models.PostComment, error)
	ListComments(ctx context.Context, postID string, parentID *string, offset, limit int) ([]models.PostComment, error)
	ListCommentsByUser(ctx context.Context, userID string, offset, limit int) ([]models.PostComment, error)
	CreateComment(ctx context.Context, userID, postID string, parentID *string, content string) (models.PostComment, error)
	UpdateComment(ctx context.Context, userID, commentID, content string) (models.PostComment, error)
	SoftDeleteComment(ctx context.Context, userID, commentID string) error
}

type CommentService struct {
	store    CommentStore
	agg      *Aggregator
	notifier Notifier
	events   events.Publisher
	log      *zap.SugaredLogger
}

func NewCommentService(store CommentStore, agg *Aggregator, notifier Notifier, pub events.Publisher, log *zap.SugaredLogger) *CommentService {
	return &CommentService{store: store, agg: agg, notifier: notifier, events: pub, log: log}
}

func errCommentNotFound() error { return apperror.NotFound("Comment not found") }

// ListForPost returns top level comments when parentID is nil and the
// replies to parentID otherwise.
func (s *CommentService) ListForPost(ctx context.Context, postID string, parentID *string, offset, limit int) ([]models.PostCommentDetails, error) {
	comments, err := s.store.ListComments(ctx, postID, parentID, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.agg.CommentDetails(ctx, comments)
}

func (s *CommentService) ListForUser(ctx context.Context, userID string, offset, limit int) ([]models.PostCommentDetails, error) {
	comments, err := s.store.ListCommentsByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.agg.CommentDetails(ctx, comments)
}

func (s *CommentService) Create(ctx context.Context, userID, postID string, parentID *string, content string) (models.PostComment, error) {
	post, err := s.store.GetPost(ctx, postID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !post.State.IsActive()) {
		return models.PostComment{}, errPostNotFound()
	}
	if err != nil {
		return models.PostComment{}, err
	}

	if parentID != nil {
		parent, err := s.store.GetComment(ctx, *parentID)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && (parent.PostID != postID || !parent.State.IsActive())) {
			return models.PostComment{}, apperror.BadRequest("Parent comment not found on this post")
		}
		if err != nil {
			return models.PostComment{}, err
		}
	}

	comment, err := s.store.CreateComment(ctx, userID, postID, parentID, content)
	if err != nil {
		return models.PostComment{}, err
	}

	s.events.Publish(events.SubjectCommentCreated, events.CommentCreatedEvent{
		CommentID: comment.ID,
		PostID:    comment.PostID,
		ParentID:  comment.ParentID,
		AuthorID:  comment.UserID,
		Timestamp: comment.CreatedAt,
	})
	s.notifier.PostCommented(postID, userID, content)

	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, userID, commentID, content string) (models.PostComment, error) {
	comment, err := s.store.UpdateComment(ctx, userID, commentID, content)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PostComment{}, errCommentNotFound()
	}
	return comment, err
}

func (s *CommentService) Delete(ctx context.Context, userID, commentID string) error {
	err := s.store.SoftDeleteComment(ctx, userID, commentID)
	if errors.Is(err, sql.ErrNoRows) {
		return errCommentNotFound()
	}
	return err
}
