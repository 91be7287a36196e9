package service

import (
	"context"

	"blogcore/internal/models"

	"golang.org/x/sync/errgroup"
)

const enrichConcurrency = 8

// PostEnricher joins posts with signed media URLs at read time.
type PostEnricher struct {
	media MediaService
}

func NewPostEnricher(media MediaService) *PostEnricher {
	return &PostEnricher{media: media}
}

func (e *PostEnricher) Enrich(ctx context.Context, post *models.Post) *models.EnrichedPost {
	enriched := &models.EnrichedPost{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Category:  post.Category,
		MediaType: post.MediaType,
		CreatedAt: post.CreatedAt,
		Comments:  post.Comments,
	}
	if post.MediaPath != "" {
		enriched.MediaURL = e.media.SignedURL(ctx, post.MediaPath)
	}
	enriched.Normalize()

	return enriched
}

// EnrichAll keeps the input order.
func (e *PostEnricher) EnrichAll(ctx context.Context, posts []*models.Post) []*models.EnrichedPost {
	enriched := make([]*models.EnrichedPost, len(posts))

	var g errgroup.Group
	g.SetLimit(enrichConcurrency)
	for i, post := range posts {
		g.Go(func() error {
			enriched[i] = e.Enrich(ctx, post)
			return nil
		})
	}
	_ = g.Wait()

	return enriched
}
