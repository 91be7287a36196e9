package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"blogcore/internal/apperr"
	"blogcore/internal/kvstore"
	"blogcore/internal/models"

	"github.com/charmbracelet/log"
)

// errUnchanged lets a mutation skip the write when it has nothing to do.
var errUnchanged = errors.New("aggregate unchanged")

type PostRepositoryImpl struct {
	store       kvstore.Store
	logger      *log.Logger
	maxAttempts int
	backoff     time.Duration
}

func NewPostRepository(store kvstore.Store, logger *log.Logger) *PostRepositoryImpl {
	return &PostRepositoryImpl{
		store:       store,
		logger:      logger.WithPrefix("posts"),
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
}

// List returns the posts in index order. Index entries whose aggregate is
// missing or unreadable are skipped.
func (r *PostRepositoryImpl) List(ctx context.Context) ([]*models.Post, error) {
	ids, err := r.IDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = PostKey(id)
	}

	values, err := r.store.MGet(ctx, keys)
	if err != nil {
		return nil, apperr.Storage("failed to fetch posts", err)
	}

	posts := make([]*models.Post, 0, len(values))
	for i, value := range values {
		if value == nil {
			r.logger.Debug("skipping stale index entry", "id", ids[i])
			continue
		}

		post, err := decodePost(value)
		if err != nil {
			r.logger.Warn("skipping unreadable post", "id", ids[i], "err", err)
			continue
		}
		posts = append(posts, post)
	}

	return posts, nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	post, _, err := r.load(ctx, postID)
	return post, err
}

// Create writes the aggregate and then prepends its id to the index, so the
// index never names a post that was not written. If the index cannot be
// updated the aggregate is removed again.
func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	post.Normalize()

	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("encode post %s: %w", post.ID, err)
	}

	err = r.store.CompareAndSwap(ctx, PostKey(post.ID), nil, data)
	if err != nil {
		if errors.Is(err, kvstore.ErrConflict) {
			return apperr.Conflict(fmt.Sprintf("post %s already exists", post.ID), err)
		}
		return apperr.Storage("failed to save post", err)
	}

	err = r.updateIndex(ctx, func(ids []string) ([]string, bool) {
		return append([]string{post.ID}, ids...), true
	})
	if err != nil {
		if delErr := r.store.Delete(ctx, PostKey(post.ID)); delErr != nil {
			r.logger.Warn("failed to remove unindexed post", "id", post.ID, "err", delErr)
		}
		return err
	}

	return nil
}

// Delete removes the aggregate and then its index entry. Deleting an absent
// post only cleans the index.
func (r *PostRepositoryImpl) Delete(ctx context.Context, postID string) error {
	if err := r.store.Delete(ctx, PostKey(postID)); err != nil {
		return apperr.Storage("failed to delete post", err)
	}

	return r.updateIndex(ctx, func(ids []string) ([]string, bool) {
		kept := make([]string, 0, len(ids))
		for _, id := range ids {
			if id != postID {
				kept = append(kept, id)
			}
		}
		return kept, len(kept) != len(ids)
	})
}

func (r *PostRepositoryImpl) IDs(ctx context.Context) ([]string, error) {
	ids, _, err := r.loadIndex(ctx)
	return ids, err
}

func (r *PostRepositoryImpl) AddComment(ctx context.Context, postID string, comment models.Comment) error {
	return r.update(ctx, postID, func(post *models.Post) error {
		post.Comments = append(post.Comments, comment)
		return nil
	})
}

func (r *PostRepositoryImpl) DeleteComment(ctx context.Context, postID, commentID string) error {
	return r.update(ctx, postID, func(post *models.Post) error {
		if models.FindComment(post.Comments, commentID) < 0 {
			return errUnchanged
		}
		post.Comments = models.WithoutComment(post.Comments, commentID)
		return nil
	})
}

func (r *PostRepositoryImpl) AddReply(ctx context.Context, postID, commentID string, reply models.Reply) error {
	return r.update(ctx, postID, func(post *models.Post) error {
		idx := models.FindComment(post.Comments, commentID)
		if idx < 0 {
			return apperr.CommentNotFound()
		}
		post.Comments[idx].Replies = append(post.Comments[idx].Replies, reply)
		return nil
	})
}

func (r *PostRepositoryImpl) DeleteReply(ctx context.Context, postID, commentID, replyID string) (bool, error) {
	commentFound := false

	err := r.update(ctx, postID, func(post *models.Post) error {
		idx := models.FindComment(post.Comments, commentID)
		commentFound = idx >= 0
		if !commentFound {
			return errUnchanged
		}

		replies := post.Comments[idx].Replies
		kept := models.WithoutReply(replies, replyID)
		if len(kept) == len(replies) {
			return errUnchanged
		}
		post.Comments[idx].Replies = kept
		return nil
	})

	return commentFound, err
}

// update runs mutate against the current aggregate and writes it back if the
// aggregate has not changed underneath. mutate may run more than once.
func (r *PostRepositoryImpl) update(ctx context.Context, postID string, mutate func(*models.Post) error) error {
	key := PostKey(postID)

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		post, raw, err := r.load(ctx, postID)
		if err != nil {
			return err
		}

		if err := mutate(post); err != nil {
			if errors.Is(err, errUnchanged) {
				return nil
			}
			return err
		}

		data, err := json.Marshal(post)
		if err != nil {
			return fmt.Errorf("encode post %s: %w", postID, err)
		}

		err = r.store.CompareAndSwap(ctx, key, raw, data)
		if err == nil {
			return nil
		}
		if !errors.Is(err, kvstore.ErrConflict) {
			return apperr.Storage("failed to save post", err)
		}

		r.logger.Debug("post changed concurrently, retrying", "id", postID, "attempt", attempt)
		if err := r.wait(ctx, attempt); err != nil {
			return err
		}
	}

	return apperr.Conflict(fmt.Sprintf("post %s is being modified concurrently, try again", postID), nil)
}

// updateIndex applies change to the id list under compare-and-swap. change
// returns false when the index does not need rewriting.
func (r *PostRepositoryImpl) updateIndex(ctx context.Context, change func([]string) ([]string, bool)) error {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		ids, raw, err := r.loadIndex(ctx)
		if err != nil {
			return err
		}

		updated, changed := change(ids)
		if !changed {
			return nil
		}

		data, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("encode post index: %w", err)
		}

		err = r.store.CompareAndSwap(ctx, PostIDsKey, raw, data)
		if err == nil {
			return nil
		}
		if !errors.Is(err, kvstore.ErrConflict) {
			return apperr.Storage("failed to update post index", err)
		}

		r.logger.Debug("post index changed concurrently, retrying", "attempt", attempt)
		if err := r.wait(ctx, attempt); err != nil {
			return err
		}
	}

	return apperr.Conflict("post index is being modified concurrently, try again", nil)
}

func (r *PostRepositoryImpl) load(ctx context.Context, postID string) (*models.Post, []byte, error) {
	raw, err := r.store.Get(ctx, PostKey(postID))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, nil, apperr.PostNotFound()
		}
		return nil, nil, apperr.Storage("failed to fetch post", err)
	}

	post, err := decodePost(raw)
	if err != nil {
		return nil, nil, apperr.Storage("failed to decode post", err)
	}

	return post, raw, nil
}

// loadIndex returns the ids and the raw stored value; raw is nil when the
// index has never been written.
func (r *PostRepositoryImpl) loadIndex(ctx context.Context) ([]string, []byte, error) {
	raw, err := r.store.Get(ctx, PostIDsKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return []string{}, nil, nil
		}
		return nil, nil, apperr.Storage("failed to fetch post index", err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, nil, apperr.Storage("failed to decode post index", err)
	}
	if ids == nil {
		ids = []string{}
	}

	return ids, raw, nil
}

// wait sleeps a jittered, linearly growing interval before the next attempt.
// Nothing is slept after the last attempt.
func (r *PostRepositoryImpl) wait(ctx context.Context, attempt int) error {
	if r.backoff <= 0 || attempt >= r.maxAttempts {
		return nil
	}

	d := min(r.backoff*time.Duration(attempt), maxBackoff)
	d = d/2 + rand.N(d/2+1)

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func decodePost(raw []byte) (*models.Post, error) {
	var post models.Post
	if err := json.Unmarshal(raw, &post); err != nil {
		return nil, err
	}
	post.Normalize()
	return &post, nil
}
