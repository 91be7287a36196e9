// Package blogcache keeps a client-side copy of the blog and reconciles it
// with the API.
//
// Mutations fall in two classes. Removals are optimistic: local state changes
// first and the request follows. Additions are confirmed: local state changes
// only after the server returns the new entity with its assigned id.
package blogcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"blogcore/internal/models"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// API is the remote surface the cache talks to. *client.Client implements it.
type API interface {
	FetchPosts(ctx context.Context) ([]models.EnrichedPost, error)
	FetchPost(ctx context.Context, postID string) (*models.EnrichedPost, error)
	CreatePost(ctx context.Context, req models.CreatePostRequest) (*models.EnrichedPost, error)
	DeletePost(ctx context.Context, postID string) error
	AddComment(ctx context.Context, postID, author, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
	AddReply(ctx context.Context, postID, commentID, author, content string) (*models.Reply, error)
	DeleteReply(ctx context.Context, postID, commentID, replyID string) error
	FetchQR(ctx context.Context) *string
	UploadQR(ctx context.Context, imageData string) (*string, error)
	DeleteQR(ctx context.Context) error
}

type Cache struct {
	api    API
	logger *log.Logger

	mu      sync.RWMutex
	posts   []models.EnrichedPost
	loading bool
	qrURL   *string
}

func New(api API, logger *log.Logger) *Cache {
	return &Cache{
		api:     api,
		logger:  logger.WithPrefix("cache"),
		posts:   []models.EnrichedPost{},
		loading: true,
	}
}

// Load fetches the posts and the QR image concurrently. On failure the cache
// stays empty; it does not retry.
func (c *Cache) Load(ctx context.Context) error {
	var (
		posts []models.EnrichedPost
		qrURL *string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = c.api.FetchPosts(gctx)
		return err
	})
	g.Go(func() error {
		qrURL = c.api.FetchQR(gctx)
		return nil
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.logger.Error("initial load failed", "err", err)
		return err
	}
	c.posts = nonNil(posts)
	c.qrURL = qrURL
	return nil
}

func (c *Cache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Posts returns a copy of the local posts, newest first.
func (c *Cache) Posts() []models.EnrichedPost {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clonePosts(c.posts)
}

// PostsInTab filters the local posts by navigation tab.
func (c *Cache) PostsInTab(tab string) []models.EnrichedPost {
	c.mu.RLock()
	defer c.mu.RUnlock()

	filtered := []models.EnrichedPost{}
	for _, p := range c.posts {
		if models.InTab(p.Category, tab) {
			filtered = append(filtered, p.Clone())
		}
	}
	return filtered
}

func (c *Cache) GetPost(postID string) (models.EnrichedPost, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.posts {
		if p.ID == postID {
			return p.Clone(), true
		}
	}
	return models.EnrichedPost{}, false
}

func (c *Cache) QRImageURL() *string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.qrURL == nil {
		return nil
	}
	url := *c.qrURL
	return &url
}

// CreatePost returns the server-assigned id.
func (c *Cache) CreatePost(ctx context.Context, req models.CreatePostRequest) (string, error) {
	post, err := confirmed(c, func() (*models.EnrichedPost, error) {
		return c.api.CreatePost(ctx, req)
	}, func(posts []models.EnrichedPost, post *models.EnrichedPost) []models.EnrichedPost {
		return prepend(posts, post.Clone())
	})
	if err != nil {
		return "", err
	}
	return post.ID, nil
}

// DeletePost removes the post locally, then on the server. A failed request is
// reconciled with a full refetch; only a failed refetch is returned.
func (c *Cache) DeletePost(ctx context.Context, postID string) error {
	var resyncErr error

	c.optimistic(func(posts []models.EnrichedPost) []models.EnrichedPost {
		return withoutPost(posts, postID)
	}, func() error {
		return c.api.DeletePost(ctx, postID)
	}, func(err error) {
		c.logger.Error("delete post failed, resyncing", "id", postID, "err", err)
		resyncErr = c.Refresh(ctx)
	})

	return resyncErr
}

func (c *Cache) AddComment(ctx context.Context, postID, author, content string) (*models.Comment, error) {
	return confirmed(c, func() (*models.Comment, error) {
		return c.api.AddComment(ctx, postID, author, content)
	}, func(posts []models.EnrichedPost, comment *models.Comment) []models.EnrichedPost {
		added := *comment
		if added.Replies == nil {
			added.Replies = []models.Reply{}
		}
		return mapPost(posts, postID, func(p *models.EnrichedPost) {
			p.Comments = append(p.Comments, added)
		})
	})
}

// DeleteComment does not roll back on failure; the next refresh corrects it.
func (c *Cache) DeleteComment(ctx context.Context, postID, commentID string) {
	c.optimistic(func(posts []models.EnrichedPost) []models.EnrichedPost {
		return mapPost(posts, postID, func(p *models.EnrichedPost) {
			p.Comments = models.WithoutComment(p.Comments, commentID)
		})
	}, func() error {
		return c.api.DeleteComment(ctx, postID, commentID)
	}, func(err error) {
		c.logger.Error("delete comment failed", "post", postID, "comment", commentID, "err", err)
	})
}

func (c *Cache) AddReply(ctx context.Context, postID, commentID, author, content string) (*models.Reply, error) {
	return confirmed(c, func() (*models.Reply, error) {
		return c.api.AddReply(ctx, postID, commentID, author, content)
	}, func(posts []models.EnrichedPost, reply *models.Reply) []models.EnrichedPost {
		return mapComment(posts, postID, commentID, func(cm *models.Comment) {
			cm.Replies = append(cm.Replies, *reply)
		})
	})
}

// DeleteReply does not roll back on failure; the next refresh corrects it.
func (c *Cache) DeleteReply(ctx context.Context, postID, commentID, replyID string) {
	c.optimistic(func(posts []models.EnrichedPost) []models.EnrichedPost {
		return mapComment(posts, postID, commentID, func(cm *models.Comment) {
			cm.Replies = models.WithoutReply(cm.Replies, replyID)
		})
	}, func() error {
		return c.api.DeleteReply(ctx, postID, commentID, replyID)
	}, func(err error) {
		c.logger.Error("delete reply failed", "post", postID, "comment", commentID, "reply", replyID, "err", err)
	})
}

// RefreshPost replaces the local copy of one post, or prepends it when it is
// not cached yet. A post the server no longer has leaves the cache untouched.
func (c *Cache) RefreshPost(ctx context.Context, postID string) error {
	fresh, err := c.api.FetchPost(ctx, postID)
	if err != nil {
		c.logger.Error("refresh post failed", "id", postID, "err", err)
		return err
	}
	if fresh == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.posts {
		if c.posts[i].ID == postID {
			c.posts[i] = fresh.Clone()
			return nil
		}
	}
	c.posts = prepend(c.posts, fresh.Clone())
	return nil
}

// Refresh replaces the local posts with the server's list.
func (c *Cache) Refresh(ctx context.Context) error {
	posts, err := c.api.FetchPosts(ctx)
	if err != nil {
		c.logger.Error("refresh failed", "err", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts = nonNil(posts)
	return nil
}

// SetQRImage uploads dataURI as the new QR image, or removes the image when
// dataURI is empty. Failures are logged; an upload failure keeps the old URL.
func (c *Cache) SetQRImage(ctx context.Context, dataURI string) {
	if dataURI == "" {
		c.mu.Lock()
		c.qrURL = nil
		c.mu.Unlock()

		if err := c.api.DeleteQR(ctx); err != nil {
			c.logger.Error("delete qr image failed", "err", err)
		}
		return
	}

	url, err := c.api.UploadQR(ctx, dataURI)
	if err != nil {
		c.logger.Error("upload qr image failed", "err", err)
		return
	}

	c.mu.Lock()
	c.qrURL = url
	c.mu.Unlock()
}

// optimistic applies patch to local state, then runs call. onFailure gets the
// call's error; the patch itself is never undone here.
func (c *Cache) optimistic(patch func([]models.EnrichedPost) []models.EnrichedPost, call func() error, onFailure func(error)) {
	c.mu.Lock()
	c.posts = patch(c.posts)
	c.mu.Unlock()

	if err := call(); err != nil {
		onFailure(err)
	}
}

// confirmed runs call and applies its result to local state only on success.
func confirmed[T any](c *Cache, call func() (T, error), apply func([]models.EnrichedPost, T) []models.EnrichedPost) (T, error) {
	result, err := call()
	if err != nil {
		return result, err
	}

	c.mu.Lock()
	c.posts = apply(c.posts, result)
	c.mu.Unlock()
	return result, nil
}

func prepend(posts []models.EnrichedPost, post models.EnrichedPost) []models.EnrichedPost {
	return append([]models.EnrichedPost{post}, posts...)
}

func withoutPost(posts []models.EnrichedPost, postID string) []models.EnrichedPost {
	kept := make([]models.EnrichedPost, 0, len(posts))
	for _, p := range posts {
		if p.ID != postID {
			kept = append(kept, p)
		}
	}
	return kept
}

// mapPost returns a new slice in which the matching post has been copied and
// passed to fn. Other posts are shared.
func mapPost(posts []models.EnrichedPost, postID string, fn func(*models.EnrichedPost)) []models.EnrichedPost {
	out := make([]models.EnrichedPost, len(posts))
	copy(out, posts)
	for i := range out {
		if out[i].ID == postID {
			updated := out[i].Clone()
			fn(&updated)
			out[i] = updated
		}
	}
	return out
}

func mapComment(posts []models.EnrichedPost, postID, commentID string, fn func(*models.Comment)) []models.EnrichedPost {
	return mapPost(posts, postID, func(p *models.EnrichedPost) {
		for i := range p.Comments {
			if p.Comments[i].ID == commentID {
				fn(&p.Comments[i])
			}
		}
	})
}

func nonNil(posts []models.EnrichedPost) []models.EnrichedPost {
	if posts == nil {
		return []models.EnrichedPost{}
	}
	return posts
}

func clonePosts(posts []models.EnrichedPost) []models.EnrichedPost {
	out := make([]models.EnrichedPost, len(posts))
	for i, p := range posts {
		out[i] = p.Clone()
	}
	return out
}

// FormatDate renders t the way post listings show dates, e.g. "2026. 3. 1.".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d. %d. %d.", t.Year(), int(t.Month()), t.Day())
}
