package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	SubjectPostCreated    = "post.created"
	SubjectPostLiked      = "post.liked"
	SubjectCommentCreated = "comment.created"
)

type PostCreatedEvent struct {
	PostID     string    `json:"postId"`
	AuthorID   string    `json:"authorId"`
	Title      string    `json:"title"`
	MediaCount int       `json:"mediaCount"`
	Timestamp  time.Time `json:"timestamp"`
}

type PostLikedEvent struct {
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	Liked     bool      `json:"liked"`
	Timestamp time.Time `json:"timestamp"`
}

type CommentCreatedEvent struct {
	CommentID string    `json:"commentId"`
	PostID    string    `json:"postId"`
	ParentID  *string   `json:"parentId,omitempty"`
	AuthorID  string    `json:"authorId"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher fans domain events out to other services. Publishing is best
// effort and never blocks the request that produced the event.
type Publisher interface {
	Publish(subject string, event any)
	Close()
}

type NATSPublisher struct {
	conn *nats.Conn
	log  *zap.SugaredLogger
}

// New connects to url. An empty url yields a publisher that drops events.
func New(url string, log *zap.SugaredLogger) (Publisher, error) {
	if url == "" {
		log.Infow("event publishing disabled", "reason", "NATS_URL not set")
		return Nop{}, nil
	}

	conn, err := nats.Connect(url, nats.Name("social-feed"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, err
	}
	log.Infow("NATS connected", "url", conn.ConnectedUrl())

	return &NATSPublisher{conn: conn, log: log}, nil
}

func (p *NATSPublisher) Publish(subject string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Errorw("encode event", "subject", subject, "error", err)
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Warnw("publish event", "subject", subject, "error", err)
	}
}

func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

type Nop struct{}

func (Nop) Publish(string, any) {}
func (Nop) Close()              {}
