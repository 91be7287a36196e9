package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"blogcore/internal/apperr"
	"blogcore/internal/messaging"
	"blogcore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCommentService(t *testing.T) (*commentService, *testEnv) {
	env := setupEnv(t)
	svc := NewCommentService(env.repo.Post, env.events, env.logger).(*commentService)

	var mu sync.Mutex
	seq := 0
	svc.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("c%d", seq)
	}
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, env.repo.Post.Create(context.Background(), &models.Post{
		ID:       "p1",
		Title:    "Title",
		Content:  "Body",
		Category: models.CategoryNotice,
	}))

	return svc, env
}

func TestCommentService_AddComment(t *testing.T) {
	tests := []struct {
		name       string
		req        models.CreateCommentRequest
		wantAuthor string
		wantBody   string
	}{
		{name: "signed", req: models.CreateCommentRequest{Author: "  Mina ", Content: " Great post "}, wantAuthor: "Mina", wantBody: "Great post"},
		{name: "anonymous", req: models.CreateCommentRequest{Content: "hello"}, wantAuthor: DefaultCommentAuthor, wantBody: "hello"},
		{name: "blank author", req: models.CreateCommentRequest{Author: "   ", Content: "hello"}, wantAuthor: DefaultCommentAuthor, wantBody: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, env := setupCommentService(t)
			ctx := context.Background()

			comment, err := svc.AddComment(ctx, "p1", tt.req)

			require.NoError(t, err)
			assert.Equal(t, "c1", comment.ID)
			assert.Equal(t, tt.wantAuthor, comment.Author)
			assert.Equal(t, tt.wantBody, comment.Content)
			assert.NotNil(t, comment.Replies)

			post, err := env.repo.Post.GetByID(ctx, "p1")
			require.NoError(t, err)
			require.Len(t, post.Comments, 1)
			assert.Equal(t, *comment, post.Comments[0])
			assert.Equal(t, []string{messaging.SubjectCommentAdded}, env.events.subjects)
		})
	}
}

func TestCommentService_AddCommentErrors(t *testing.T) {
	svc, env := setupCommentService(t)
	ctx := context.Background()

	_, err := svc.AddComment(ctx, "p1", models.CreateCommentRequest{Content: "   "})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, apperr.MsgMissingComment, apperr.Message(err))

	_, err = svc.AddComment(ctx, "missing", models.CreateCommentRequest{Content: "hi"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, apperr.MsgPostNotFound, apperr.Message(err))

	_, err = svc.AddComment(ctx, "missing", models.CreateCommentRequest{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	assert.Empty(t, env.events.subjects)
}

func TestCommentService_ConcurrentComments(t *testing.T) {
	svc, env := setupCommentService(t)
	ctx := context.Background()

	const writers = 4
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.AddComment(ctx, "p1", models.CreateCommentRequest{Content: fmt.Sprintf("comment %d", i)})
		}()
	}
	wg.Wait()

	added := 0
	for _, err := range errs {
		if err == nil {
			added++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrConflict)
	}

	post, err := env.repo.Post.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, post.Comments, added)
}

func TestCommentService_DeleteComment(t *testing.T) {
	svc, env := setupCommentService(t)
	ctx := context.Background()

	first, err := svc.AddComment(ctx, "p1", models.CreateCommentRequest{Content: "one"})
	require.NoError(t, err)
	second, err := svc.AddComment(ctx, "p1", models.CreateCommentRequest{Content: "two"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteComment(ctx, "p1", first.ID))
	require.NoError(t, svc.DeleteComment(ctx, "p1", first.ID))

	post, err := env.repo.Post.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, post.Comments, 1)
	assert.Equal(t, second.ID, post.Comments[0].ID)

	assert.ErrorIs(t, svc.DeleteComment(ctx, "missing", first.ID), apperr.ErrNotFound)
}

func TestCommentService_Replies(t *testing.T) {
	svc, env := setupCommentService(t)
	ctx := context.Background()

	comment, err := svc.AddComment(ctx, "p1", models.CreateCommentRequest{Content: "question"})
	require.NoError(t, err)

	reply, err := svc.AddReply(ctx, "p1", comment.ID, models.CreateReplyRequest{Content: " answer "})
	require.NoError(t, err)
	assert.Equal(t, DefaultReplyAuthor, reply.Author)
	assert.Equal(t, "answer", reply.Content)

	signed, err := svc.AddReply(ctx, "p1", comment.ID, models.CreateReplyRequest{Author: "Kim", Content: "follow-up"})
	require.NoError(t, err)
	assert.Equal(t, "Kim", signed.Author)

	post, err := env.repo.Post.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, post.Comments[0].Replies, 2)
	assert.Equal(t, reply.ID, post.Comments[0].Replies[0].ID)
	assert.Equal(t, signed.ID, post.Comments[0].Replies[1].ID)

	require.NoError(t, svc.DeleteReply(ctx, "p1", comment.ID, reply.ID))
	require.NoError(t, svc.DeleteReply(ctx, "p1", comment.ID, reply.ID))

	post, err = env.repo.Post.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, post.Comments[0].Replies, 1)
	assert.Equal(t, signed.ID, post.Comments[0].Replies[0].ID)

	assert.Contains(t, env.events.subjects, messaging.SubjectReplyAdded)
}

func TestCommentService_ReplyErrors(t *testing.T) {
	svc, _ := setupCommentService(t)
	ctx := context.Background()

	_, err := svc.AddReply(ctx, "p1", "nope", models.CreateReplyRequest{Content: ""})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, apperr.MsgMissingReply, apperr.Message(err))

	_, err = svc.AddReply(ctx, "p1", "nope", models.CreateReplyRequest{Content: "hi"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, apperr.MsgCommentNotFound, apperr.Message(err))

	_, err = svc.AddReply(ctx, "missing", "nope", models.CreateReplyRequest{Content: "hi"})
	assert.Equal(t, apperr.MsgPostNotFound, apperr.Message(err))

	err = svc.DeleteReply(ctx, "p1", "nope", "r1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, apperr.MsgCommentNotFound, apperr.Message(err))

	err = svc.DeleteReply(ctx, "missing", "nope", "r1")
	assert.Equal(t, apperr.MsgPostNotFound, apperr.Message(err))
}
