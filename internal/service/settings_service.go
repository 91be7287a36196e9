package service

import (
	"context"
	"time"

	"blogcore/internal/apperr"
	"blogcore/internal/repository"

	"github.com/charmbracelet/log"
)

// SettingsService manages the singleton QR image.
type SettingsService interface {
	GetQR(ctx context.Context) (*string, error)
	SetQR(ctx context.Context, imageData string) (*string, error)
	DeleteQR(ctx context.Context) error
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
	media        MediaService
	logger       *log.Logger
	now          func() time.Time
}

func NewSettingsService(settingsRepo repository.SettingsRepository, media MediaService, logger *log.Logger) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		media:        media,
		logger:       logger.WithPrefix("settings"),
		now:          time.Now,
	}
}

func (s *settingsService) GetQR(ctx context.Context) (*string, error) {
	path, err := s.settingsRepo.GetQRPath(ctx)
	if err != nil {
		return nil, err
	}

	return s.media.SignedURL(ctx, path), nil
}

// SetQR uploads the new image, points the settings key at it and only then
// removes the previous blob.
func (s *settingsService) SetQR(ctx context.Context, imageData string) (*string, error) {
	if imageData == "" {
		return nil, apperr.Validation(apperr.MsgMissingImage)
	}

	uri, err := ParseDataURI(imageData)
	if err != nil {
		return nil, err
	}

	oldPath, err := s.settingsRepo.GetQRPath(ctx)
	if err != nil {
		return nil, err
	}

	path := QRImagePath(s.now())
	if _, err := s.media.Upload(ctx, uri, path); err != nil {
		return nil, err
	}

	if err := s.settingsRepo.SetQRPath(ctx, path); err != nil {
		s.media.Remove(ctx, path)
		return nil, err
	}

	if oldPath != "" && oldPath != path {
		s.media.Remove(ctx, oldPath)
	}

	s.logger.Info("qr image replaced", "path", path, "previous", oldPath)

	return s.media.SignedURL(ctx, path), nil
}

func (s *settingsService) DeleteQR(ctx context.Context) error {
	path, err := s.settingsRepo.GetQRPath(ctx)
	if err != nil {
		return err
	}

	if path != "" {
		s.media.Remove(ctx, path)
	}

	return s.settingsRepo.DeleteQRPath(ctx)
}
