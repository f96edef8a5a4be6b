package services

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"masterboxer.com/social-feed/models"
)

// Notifier tells post owners about engagement from other users. Calls return
// immediately; delivery happens in the background.
type Notifier interface {
	PostLiked(postID, likerID string)
	PostCommented(postID, commenterID, content string)
}

type NopNotifier struct{}

func (NopNotifier) PostLiked(string, string)             {}
func (NopNotifier) PostCommented(string, string, string) {}

type multicastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type NotifyStore interface {
	GetPost(ctx context.Context, id string) (models.Post, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	DeviceTokens(ctx context.Context, userID string) ([]string, error)
	DeleteDeviceToken(ctx context.Context, token string) error
}

type PushNotifier struct {
	client  multicastSender
	store   NotifyStore
	log     *zap.SugaredLogger
	timeout time.Duration
}

// NewNotifier returns an FCM backed notifier, or a no-op one when no
// credentials file is configured.
func NewNotifier(ctx context.Context, credentialsPath string, store NotifyStore, log *zap.SugaredLogger) (Notifier, error) {
	if credentialsPath == "" {
		log.Infow("push notifications disabled", "reason", "FIREBASE_CREDENTIALS_PATH not set")
		return NopNotifier{}, nil
	}

	log.Infow("initializing firebase", "credentials", credentialsPath)
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}

	return newPushNotifier(client, store, log), nil
}

func newPushNotifier(client multicastSender, store NotifyStore, log *zap.SugaredLogger) *PushNotifier {
	return &PushNotifier{client: client, store: store, log: log, timeout: 15 * time.Second}
}

func (n *PushNotifier) PostLiked(postID, likerID string) {
	go n.run(func(ctx context.Context) {
		n.notifyPostOwner(ctx, postID, likerID, "post_like", func(actor, post string) (string, string) {
			return actor + " liked your post", post
		})
	})
}

func (n *PushNotifier) PostCommented(postID, commenterID, content string) {
	go n.run(func(ctx context.Context) {
		n.notifyPostOwner(ctx, postID, commenterID, "post_comment", func(actor, _ string) (string, string) {
			return actor + " commented on your post", content
		})
	})
}

func (n *PushNotifier) run(fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	fn(ctx)
}

func (n *PushNotifier) notifyPostOwner(ctx context.Context, postID, actorID, kind string, text func(actor, post string) (string, string)) {
	post, err := n.store.GetPost(ctx, postID)
	if err != nil {
		n.log.Warnw("notification post lookup failed", "postId", postID, "error", err)
		return
	}
	if post.UserID == actorID {
		return
	}

	actorName := "Someone"
	if actor, err := n.store.GetUser(ctx, actorID); err == nil {
		actorName = actor.Username
	}

	tokens, err := n.store.DeviceTokens(ctx, post.UserID)
	if err != nil {
		n.log.Warnw("device token lookup failed", "userId", post.UserID, "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	title, body := text(actorName, post.Title)
	sent, failed, err := n.send(ctx, tokens, title, truncate(body, 100), map[string]string{
		"type":        kind,
		"postId":      post.ID,
		"actorId":     actorID,
		"postOwnerId": post.UserID,
	})
	if err != nil {
		n.log.Errorw("push notification failed", "kind", kind, "postId", postID, "error", err)
		return
	}
	n.log.Infow("push notification sent", "kind", kind, "postId", postID, "success", sent, "failure", failed)
}

// send delivers one message to every token and forgets tokens FCM reports
// as unregistered.
func (n *PushNotifier) send(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, int, error) {
	resp, err := n.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
		Tokens:       tokens,
	})
	if err != nil {
		return 0, 0, err
	}

	for i, r := range resp.Responses {
		if r.Success || !messaging.IsUnregistered(r.Error) {
			continue
		}
		if err := n.store.DeleteDeviceToken(ctx, tokens[i]); err != nil {
			n.log.Warnw("delete dead device token", "error", err)
		}
	}

	return resp.SuccessCount, resp.FailureCount, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
