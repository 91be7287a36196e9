package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"time"

	"blogcore/internal/apperr"
	"blogcore/internal/models"
	"blogcore/internal/storage"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// MediaService manages media blobs: decoding uploads, issuing signed URLs and
// removing blobs whose owner is gone.
type MediaService interface {
	// Upload stores a decoded payload at path, replacing whatever was there.
	Upload(ctx context.Context, uri *DataURI, path string) (string, error)
	// SignedURL returns nil when no URL can be produced.
	SignedURL(ctx context.Context, path string) *string
	// Remove is best-effort.
	Remove(ctx context.Context, path string)
}

var dataURIPattern = regexp.MustCompile(`^data:([^;]+);base64,(.+)$`)

type DataURI struct {
	MIMEType string
	Data     []byte
}

// ParseDataURI decodes a payload of the form data:<mime>;base64,<data>.
func ParseDataURI(payload string) (*DataURI, error) {
	matches := dataURIPattern.FindStringSubmatch(payload)
	if matches == nil {
		return nil, apperr.MediaDecode(apperr.MsgInvalidPayload, nil)
	}

	data, err := base64.StdEncoding.DecodeString(matches[2])
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(matches[2])
		if err != nil {
			return nil, apperr.MediaDecode(apperr.MsgInvalidPayload, err)
		}
	}

	return &DataURI{MIMEType: matches[1], Data: data}, nil
}

func PostMediaPath(postID string, mediaType models.MediaType) string {
	return fmt.Sprintf("posts/%s/media.%s", postID, mediaType.Extension())
}

func QRImagePath(now time.Time) string {
	return fmt.Sprintf("qr/qr-image-%d.png", now.UnixMilli())
}

type mediaService struct {
	storage storage.Storage
	expiry  time.Duration
	logger  *log.Logger
	now     func() time.Time
}

func NewMediaService(storage storage.Storage, expiry time.Duration, logger *log.Logger) MediaService {
	return &mediaService{
		storage: storage,
		expiry:  expiry,
		logger:  logger.WithPrefix("media"),
		now:     time.Now,
	}
}

func (m *mediaService) Upload(ctx context.Context, uri *DataURI, path string) (string, error) {
	if uri == nil {
		return "", apperr.MediaDecode(apperr.MsgInvalidPayload, nil)
	}

	detected := mimetype.Detect(uri.Data)
	metadata := map[string]string{
		"detected-type": detected.String(),
		"uploaded-at":   m.now().UTC().Format(time.RFC3339),
	}

	if err := m.storage.PutObject(ctx, path, uri.Data, uri.MIMEType, metadata); err != nil {
		return "", apperr.Storage("failed to upload media", err)
	}

	m.logger.Info("media uploaded",
		"path", path,
		"type", uri.MIMEType,
		"detected", detected.String(),
		"size", humanize.Bytes(uint64(len(uri.Data))))

	return path, nil
}

func (m *mediaService) SignedURL(ctx context.Context, path string) *string {
	if path == "" {
		return nil
	}

	signed, err := m.storage.SignedURL(ctx, path, m.expiry)
	if err != nil {
		m.logger.Warn("signed url unavailable", "path", path, "err", err)
		return nil
	}

	return &signed
}

func (m *mediaService) Remove(ctx context.Context, path string) {
	if path == "" {
		return
	}

	if err := m.storage.RemoveObject(ctx, path); err != nil {
		m.logger.Warn("media removal failed", "path", path, "err", err)
		return
	}

	m.logger.Debug("media removed", "path", path)
}
