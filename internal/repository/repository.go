package repository

import (
	"context"
	"time"

	"blogcore/internal/kvstore"
	"blogcore/internal/models"

	"github.com/charmbracelet/log"
)

// Persisted key layout.
const (
	PostIDsKey    = "blog:post_ids"
	PostKeyPrefix = "blog:post:"
	QRPathKey     = "blog:qr_path"
)

// Compare-and-swap retry policy.
const (
	defaultMaxAttempts = 5
	defaultBackoff     = 5 * time.Millisecond
	maxBackoff         = 50 * time.Millisecond
)

func PostKey(id string) string {
	return PostKeyPrefix + id
}

// PostRepository owns the post index and the post aggregates. Every call
// touches one aggregate key; read-modify-write cycles are guarded by
// compare-and-swap and retried on conflict.
type PostRepository interface {
	List(ctx context.Context) ([]*models.Post, error)
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, postID string) error
	IDs(ctx context.Context) ([]string, error)

	AddComment(ctx context.Context, postID string, comment models.Comment) error
	DeleteComment(ctx context.Context, postID, commentID string) error
	AddReply(ctx context.Context, postID, commentID string, reply models.Reply) error
	// DeleteReply reports whether the parent comment was present.
	DeleteReply(ctx context.Context, postID, commentID, replyID string) (bool, error)
}

// SettingsRepository holds the singleton QR image path.
type SettingsRepository interface {
	GetQRPath(ctx context.Context) (string, error)
	SetQRPath(ctx context.Context, path string) error
	DeleteQRPath(ctx context.Context) error
}

type Repository struct {
	Post     PostRepository
	Settings SettingsRepository
}

func NewRepository(store kvstore.Store, logger *log.Logger) *Repository {
	return &Repository{
		Post:     NewPostRepository(store, logger),
		Settings: NewSettingsRepository(store),
	}
}
