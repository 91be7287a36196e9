package service

import (
	"context"
	"strings"
	"time"

	"blogcore/internal/apperr"
	"blogcore/internal/messaging"
	"blogcore/internal/models"
	"blogcore/internal/repository"

	"github.com/charmbracelet/log"
)

// Authors used when a comment or reply is left unsigned.
const (
	DefaultCommentAuthor = "익명"
	DefaultReplyAuthor   = "관리자"
)

type CommentService interface {
	AddComment(ctx context.Context, postID string, req models.CreateCommentRequest) (*models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
	AddReply(ctx context.Context, postID, commentID string, req models.CreateReplyRequest) (*models.Reply, error)
	DeleteReply(ctx context.Context, postID, commentID, replyID string) error
}

type commentService struct {
	postRepo repository.PostRepository
	events   messaging.Publisher
	logger   *log.Logger
	newID    func() string
	now      func() time.Time
}

func NewCommentService(postRepo repository.PostRepository, events messaging.Publisher, logger *log.Logger) CommentService {
	return &commentService{
		postRepo: postRepo,
		events:   events,
		logger:   logger.WithPrefix("comments"),
		newID:    NewID,
		now:      time.Now,
	}
}

func authorOr(author, fallback string) string {
	if trimmed := strings.TrimSpace(author); trimmed != "" {
		return trimmed
	}
	return fallback
}

func (c *commentService) AddComment(ctx context.Context, postID string, req models.CreateCommentRequest) (*models.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperr.Validation(apperr.MsgMissingComment)
	}

	comment := models.Comment{
		ID:        c.newID(),
		Author:    authorOr(req.Author, DefaultCommentAuthor),
		Content:   content,
		CreatedAt: c.now().UTC(),
		Replies:   []models.Reply{},
	}

	if err := c.postRepo.AddComment(ctx, postID, comment); err != nil {
		return nil, err
	}

	if err := c.events.CommentAdded(ctx, postID, &comment); err != nil {
		c.logger.Warn("publish comment added", "post", postID, "err", err)
	}

	return &comment, nil
}

// DeleteComment reports not-found only for a missing post; an absent comment
// is already deleted.
func (c *commentService) DeleteComment(ctx context.Context, postID, commentID string) error {
	return c.postRepo.DeleteComment(ctx, postID, commentID)
}

func (c *commentService) AddReply(ctx context.Context, postID, commentID string, req models.CreateReplyRequest) (*models.Reply, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperr.Validation(apperr.MsgMissingReply)
	}

	reply := models.Reply{
		ID:        c.newID(),
		Author:    authorOr(req.Author, DefaultReplyAuthor),
		Content:   content,
		CreatedAt: c.now().UTC(),
	}

	if err := c.postRepo.AddReply(ctx, postID, commentID, reply); err != nil {
		return nil, err
	}

	if err := c.events.ReplyAdded(ctx, postID, commentID, &reply); err != nil {
		c.logger.Warn("publish reply added", "post", postID, "err", err)
	}

	return &reply, nil
}

// DeleteReply is idempotent for the reply but reports a missing post or
// comment as not found.
func (c *commentService) DeleteReply(ctx context.Context, postID, commentID, replyID string) error {
	commentFound, err := c.postRepo.DeleteReply(ctx, postID, commentID, replyID)
	if err != nil {
		return err
	}
	if !commentFound {
		return apperr.CommentNotFound()
	}
	return nil
}
