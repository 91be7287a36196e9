package service

import (
	"blogcore/internal/config"
	"blogcore/internal/messaging"
	"blogcore/internal/repository"
	"blogcore/internal/storage"

	"github.com/charmbracelet/log"
)

type Service struct {
	Post     PostService
	Comment  CommentService
	Settings SettingsService
	Media    MediaService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage, events messaging.Publisher, logger *log.Logger) *Service {
	media := NewMediaService(storage, cfg.MinIO.URLExpiry, logger)

	return &Service{
		Post:     NewPostService(rep.Post, media, events, logger),
		Comment:  NewCommentService(rep.Post, events, logger),
		Settings: NewSettingsService(rep.Settings, media, logger),
		Media:    media,
	}
}
