package service

import (
	"context"
	"errors"
	"time"

	"blogcore/internal/apperr"
	"blogcore/internal/messaging"
	"blogcore/internal/models"
	"blogcore/internal/repository"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
)

type PostService interface {
	ListPosts(ctx context.Context) ([]*models.EnrichedPost, error)
	GetPost(ctx context.Context, postID string) (*models.EnrichedPost, error)
	CreatePost(ctx context.Context, req models.CreatePostRequest) (*models.EnrichedPost, error)
	DeletePost(ctx context.Context, postID string) error
}

type postService struct {
	postRepo repository.PostRepository
	media    MediaService
	enricher *PostEnricher
	events   messaging.Publisher
	validate *validator.Validate
	logger   *log.Logger
	newID    func() string
	now      func() time.Time
}

func NewPostService(postRepo repository.PostRepository, media MediaService, events messaging.Publisher, logger *log.Logger) PostService {
	return &postService{
		postRepo: postRepo,
		media:    media,
		enricher: NewPostEnricher(media),
		events:   events,
		validate: models.NewValidator(),
		logger:   logger.WithPrefix("posts"),
		newID:    NewID,
		now:      time.Now,
	}
}

func (p *postService) ListPosts(ctx context.Context) ([]*models.EnrichedPost, error) {
	posts, err := p.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	return p.enricher.EnrichAll(ctx, posts), nil
}

func (p *postService) GetPost(ctx context.Context, postID string) (*models.EnrichedPost, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return p.enricher.Enrich(ctx, post), nil
}

// CreatePost uploads media first, then writes the aggregate. Nothing is
// written when the request or its media payload is invalid.
func (p *postService) CreatePost(ctx context.Context, req models.CreatePostRequest) (*models.EnrichedPost, error) {
	if err := p.validateCreate(req); err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:        p.newID(),
		Title:     req.Title,
		Content:   req.Content,
		Category:  req.Category,
		CreatedAt: p.now().UTC(),
		Comments:  []models.Comment{},
	}

	if req.HasMedia() {
		uri, err := ParseDataURI(req.MediaData)
		if err != nil {
			return nil, err
		}

		path := PostMediaPath(post.ID, req.MediaType)
		if _, err := p.media.Upload(ctx, uri, path); err != nil {
			return nil, err
		}
		post.MediaPath = path
		post.MediaType = req.MediaType
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		if post.MediaPath != "" {
			p.media.Remove(ctx, post.MediaPath)
		}
		return nil, err
	}

	p.logger.Info("post created", "id", post.ID, "category", post.Category, "media", post.MediaType)

	if err := p.events.PostCreated(ctx, post); err != nil {
		p.logger.Warn("publish post created", "id", post.ID, "err", err)
	}

	return p.enricher.Enrich(ctx, post), nil
}

// DeletePost is safe to call for posts that no longer exist.
func (p *postService) DeletePost(ctx context.Context, postID string) error {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	if post != nil && post.MediaPath != "" {
		p.media.Remove(ctx, post.MediaPath)
	}

	if err := p.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	p.logger.Info("post deleted", "id", postID)

	if err := p.events.PostDeleted(ctx, postID); err != nil {
		p.logger.Warn("publish post deleted", "id", postID, "err", err)
	}

	return nil
}

func (p *postService) validateCreate(req models.CreatePostRequest) error {
	err := p.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			switch fe.Tag() {
			case "category":
				return apperr.Validation(apperr.MsgInvalidCategory)
			case "oneof":
				return apperr.Validation(apperr.MsgInvalidMedia)
			}
		}
	}

	return apperr.Validation(apperr.MsgMissingFields)
}
