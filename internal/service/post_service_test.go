package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"blogcore/internal/apperr"
	"blogcore/internal/messaging"
	"blogcore/internal/models"
	"blogcore/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPostService(env *testEnv) *postService {
	svc := NewPostService(env.repo.Post, env.media, env.events, env.logger).(*postService)

	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("post%d", seq)
	}
	svc.now = func() time.Time {
		return time.Date(2026, 3, 1, 9, 0, seq, 0, time.FixedZone("KST", 9*3600))
	}
	return svc
}

func validPostRequest() models.CreatePostRequest {
	return models.CreatePostRequest{
		Title:    "Unit 1 review",
		Content:  "<p>Kinematics</p>",
		Category: models.CategorySAT,
	}
}

func TestPostService_CreatePostValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*models.CreatePostRequest)
		wantMsg string
		wantErr error
	}{
		{
			name:    "missing title",
			modify:  func(r *models.CreatePostRequest) { r.Title = "" },
			wantMsg: apperr.MsgMissingFields,
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "missing content",
			modify:  func(r *models.CreatePostRequest) { r.Content = "" },
			wantMsg: apperr.MsgMissingFields,
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "missing category",
			modify:  func(r *models.CreatePostRequest) { r.Category = "" },
			wantMsg: apperr.MsgMissingFields,
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "unknown category",
			modify:  func(r *models.CreatePostRequest) { r.Category = "AP Art History" },
			wantMsg: apperr.MsgInvalidCategory,
			wantErr: apperr.ErrValidation,
		},
		{
			name: "unknown media type",
			modify: func(r *models.CreatePostRequest) {
				r.MediaType = "audio"
				r.MediaData = pngDataURI
			},
			wantMsg: apperr.MsgInvalidMedia,
			wantErr: apperr.ErrValidation,
		},
		{
			name: "undecodable media",
			modify: func(r *models.CreatePostRequest) {
				r.MediaType = models.MediaImage
				r.MediaData = "not-a-data-uri"
			},
			wantMsg: apperr.MsgInvalidPayload,
			wantErr: apperr.ErrMediaDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupEnv(t)
			svc := newTestPostService(env)
			req := validPostRequest()
			tt.modify(&req)

			post, err := svc.CreatePost(context.Background(), req)

			assert.Nil(t, post)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantMsg, apperr.Message(err))

			ids, err := env.repo.Post.IDs(context.Background())
			require.NoError(t, err)
			assert.Empty(t, ids)
			assert.Zero(t, env.storage.count())
			assert.Empty(t, env.events.subjects)
		})
	}
}

func TestPostService_CreatePostWithoutMedia(t *testing.T) {
	env := setupEnv(t)
	svc := newTestPostService(env)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, validPostRequest())

	require.NoError(t, err)
	assert.Equal(t, "post1", post.ID)
	assert.Nil(t, post.MediaURL)
	assert.Empty(t, post.MediaType)
	assert.NotNil(t, post.Comments)
	assert.Empty(t, post.Comments)
	assert.Equal(t, time.UTC, post.CreatedAt.Location())

	stored, err := env.repo.Post.GetByID(ctx, "post1")
	require.NoError(t, err)
	assert.Empty(t, stored.MediaPath)
	assert.Equal(t, []string{messaging.SubjectPostCreated}, env.events.subjects)
}

func TestPostService_CreatePostWithMedia(t *testing.T) {
	env := setupEnv(t)
	svc := newTestPostService(env)
	ctx := context.Background()
	req := validPostRequest()
	req.MediaType = models.MediaImage
	req.MediaData = pngDataURI

	post, err := svc.CreatePost(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, post.MediaURL)
	assert.Contains(t, *post.MediaURL, "posts/post1/media.jpg")
	assert.Equal(t, models.MediaImage, post.MediaType)
	assert.True(t, env.storage.has("posts/post1/media.jpg"))

	stored, err := env.repo.Post.GetByID(ctx, "post1")
	require.NoError(t, err)
	assert.Equal(t, "posts/post1/media.jpg", stored.MediaPath)
}

func TestPostService_CreatePostMediaTypeWithoutData(t *testing.T) {
	env := setupEnv(t)
	svc := newTestPostService(env)
	req := validPostRequest()
	req.MediaType = models.MediaVideo

	post, err := svc.CreatePost(context.Background(), req)

	require.NoError(t, err)
	assert.Nil(t, post.MediaURL)
	assert.Empty(t, post.MediaType)
	assert.Zero(t, env.storage.count())
}

func TestPostService_CreatePostUploadFailure(t *testing.T) {
	env := setupEnv(t)
	env.storage.failPut = true
	svc := newTestPostService(env)
	req := validPostRequest()
	req.MediaType = models.MediaVideo
	req.MediaData = "data:video/mp4;base64,AAAA"

	_, err := svc.CreatePost(context.Background(), req)

	assert.ErrorIs(t, err, apperr.ErrStorage)
	ids, err := env.repo.Post.IDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPostService_CreatePostRemovesMediaWhenWriteFails(t *testing.T) {
	env := setupEnv(t)
	svc := newTestPostService(env)
	ctx := context.Background()
	req := validPostRequest()
	req.MediaType = models.MediaImage
	req.MediaData = pngDataURI

	require.NoError(t, env.mr.Set(repository.PostKey("post1"), `{"id":"post1"}`))

	_, err := svc.CreatePost(ctx, req)

	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.False(t, env.storage.has("posts/post1/media.jpg"))
	assert.Contains(t, env.storage.removed, "posts/post1/media.jpg")
}

func TestPostService_CreatePostLeavesNothingWhenIndexFails(t *testing.T) {
	env := setupEnv(t)
	svc := newTestPostService(env)
	ctx := context.Background()
	req := validPostRequest()
	req.MediaType = models.MediaImage
	req.MediaData = pngDataURI

	require.NoError(t, env.mr.Set(repository.PostIDsKey, "not json"))

	_, err := svc.CreatePost(ctx, req)

	assert.ErrorIs(t, err, apperr.ErrStorage)
	assert.False(t, env.storage.has("posts/post1/media.jpg"))
	assert.False(t, env.mr.Exists(repository.PostKey("post1")))

	_, err = svc.GetPost(ctx, "post1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, env.events.subjects)
}

func TestPostService_ListPostsNewestFirst(t *testing.T) {
	env := setupEnv(t)
	svc := newTestPostService(env)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreatePost(ctx, validPostRequest())
		require.NoError(t, err)
	}

	posts, err := svc.ListPosts(ctx)

	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "post3", posts[0].ID)
	assert.Equal(t, "post2", posts[1].ID)
	assert.Equal(t, "post1", posts[2].ID)
}

func TestPostService_ListPostsEmpty(t *testing.T) {
	env := setupEnv(t)
	svc := newTestPostService(env)

	posts, err := svc.ListPosts(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostService_ListPostsWithMissingMedia(t *testing.T) {
	env := setupEnv(t)
	svc := newTestPostService(env)
	ctx := context.Background()
	req := validPostRequest()
	req.MediaType = models.MediaImage
	req.MediaData = pngDataURI

	_, err := svc.CreatePost(ctx, req)
	require.NoError(t, err)
	require.NoError(t, env.storage.RemoveObject(ctx, "posts/post1/media.jpg"))

	posts, err := svc.ListPosts(ctx)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Nil(t, posts[0].MediaURL)
	assert.Equal(t, models.MediaImage, posts[0].MediaType)
}

func TestPostService_GetPost(t *testing.T) {
	env := setupEnv(t)
	svc := newTestPostService(env)
	ctx := context.Background()

	_, err := svc.GetPost(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.CreatePost(ctx, validPostRequest())
	require.NoError(t, err)

	post, err := svc.GetPost(ctx, "post1")
	require.NoError(t, err)
	assert.Equal(t, "Unit 1 review", post.Title)
}

func TestPostService_DeletePost(t *testing.T) {
	env := setupEnv(t)
	svc := newTestPostService(env)
	ctx := context.Background()
	req := validPostRequest()
	req.MediaType = models.MediaVideo
	req.MediaData = "data:video/mp4;base64,AAAA"

	_, err := svc.CreatePost(ctx, req)
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, validPostRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, "post1"))

	assert.False(t, env.storage.has("posts/post1/media.mp4"))
	assert.False(t, env.mr.Exists(repository.PostKey("post1")))
	ids, err := env.repo.Post.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"post2"}, ids)
	assert.Contains(t, env.events.subjects, messaging.SubjectPostDeleted)
}

func TestPostService_DeleteMissingPost(t *testing.T) {
	env := setupEnv(t)
	svc := newTestPostService(env)

	assert.NoError(t, svc.DeletePost(context.Background(), "never-existed"))
	assert.Empty(t, env.storage.removed)
}
