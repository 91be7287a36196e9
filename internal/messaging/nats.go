// Package messaging publishes post lifecycle events. Events are informational:
// a failed publish never fails the mutation that produced it.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"blogcore/internal/models"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
)

const (
	SubjectPostCreated  = "blog.post.created"
	SubjectPostDeleted  = "blog.post.deleted"
	SubjectCommentAdded = "blog.comment.added"
	SubjectReplyAdded   = "blog.reply.added"
)

type Publisher interface {
	PostCreated(ctx context.Context, post *models.Post) error
	PostDeleted(ctx context.Context, postID string) error
	CommentAdded(ctx context.Context, postID string, comment *models.Comment) error
	ReplyAdded(ctx context.Context, postID, commentID string, reply *models.Reply) error
	Close() error
}

type PostCreatedEvent struct {
	PostID    string           `json:"post_id"`
	Title     string           `json:"title"`
	Category  string           `json:"category"`
	MediaType models.MediaType `json:"media_type,omitempty"`
	Timestamp string           `json:"timestamp"`
}

type PostDeletedEvent struct {
	PostID    string `json:"post_id"`
	Timestamp string `json:"timestamp"`
}

type CommentAddedEvent struct {
	PostID    string `json:"post_id"`
	CommentID string `json:"comment_id"`
	Author    string `json:"author"`
	Timestamp string `json:"timestamp"`
}

type ReplyAddedEvent struct {
	PostID    string `json:"post_id"`
	CommentID string `json:"comment_id"`
	ReplyID   string `json:"reply_id"`
	Author    string `json:"author"`
	Timestamp string `json:"timestamp"`
}

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

type NATSPublisher struct {
	conn conn
	now  func() time.Time
}

// NewPublisher connects to NATS, or returns a no-op publisher when url is empty.
func NewPublisher(url string, logger *log.Logger) (Publisher, error) {
	if url == "" {
		logger.Info("event publishing disabled")
		return NoopPublisher{}, nil
	}

	nc, err := nats.Connect(url, nats.Name("blogcore"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	logger.Info("nats connected", "url", nc.ConnectedUrl())
	return newNATSPublisher(nc), nil
}

func newNATSPublisher(c conn) *NATSPublisher {
	return &NATSPublisher{conn: c, now: time.Now}
}

func (p *NATSPublisher) PostCreated(_ context.Context, post *models.Post) error {
	return p.publish(SubjectPostCreated, PostCreatedEvent{
		PostID:    post.ID,
		Title:     post.Title,
		Category:  post.Category,
		MediaType: post.MediaType,
		Timestamp: post.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (p *NATSPublisher) PostDeleted(_ context.Context, postID string) error {
	return p.publish(SubjectPostDeleted, PostDeletedEvent{
		PostID:    postID,
		Timestamp: p.now().UTC().Format(time.RFC3339),
	})
}

func (p *NATSPublisher) CommentAdded(_ context.Context, postID string, comment *models.Comment) error {
	return p.publish(SubjectCommentAdded, CommentAddedEvent{
		PostID:    postID,
		CommentID: comment.ID,
		Author:    comment.Author,
		Timestamp: comment.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (p *NATSPublisher) ReplyAdded(_ context.Context, postID, commentID string, reply *models.Reply) error {
	return p.publish(SubjectReplyAdded, ReplyAddedEvent{
		PostID:    postID,
		CommentID: commentID,
		ReplyID:   reply.ID,
		Author:    reply.Author,
		Timestamp: reply.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

func (p *NATSPublisher) publish(subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}

type NoopPublisher struct{}

func (NoopPublisher) PostCreated(context.Context, *models.Post) error { return nil }

func (NoopPublisher) PostDeleted(context.Context, string) error { return nil }

func (NoopPublisher) CommentAdded(context.Context, string, *models.Comment) error { return nil }

func (NoopPublisher) ReplyAdded(context.Context, string, string, *models.Reply) error { return nil }

func (NoopPublisher) Close() error { return nil }
