package handlers

import (
	"context"

	"blogcore/internal/config"
	"blogcore/internal/service"

	"github.com/charmbracelet/log"
)

// HealthChecker is satisfied by every kvstore backend.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	PostService     service.PostService
	CommentService  service.CommentService
	SettingsService service.SettingsService
	Health          HealthChecker
	Cfg             *config.Config
	Logger          *log.Logger
}

func NewHandlers(service *service.Service, health HealthChecker, config *config.Config, logger *log.Logger) *Handlers {
	return &Handlers{
		PostService:     service.Post,
		CommentService:  service.Comment,
		SettingsService: service.Settings,
		Health:          health,
		Cfg:             config,
		Logger:          logger.WithPrefix("http"),
	}
}
