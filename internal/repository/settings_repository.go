package repository

import (
	"context"
	"encoding/json"
	"errors"

	"blogcore/internal/apperr"
	"blogcore/internal/kvstore"
)

type settingsRepository struct {
	store kvstore.Store
}

func NewSettingsRepository(store kvstore.Store) SettingsRepository {
	return &settingsRepository{store: store}
}

// GetQRPath returns "" when no QR image is configured.
func (r *settingsRepository) GetQRPath(ctx context.Context) (string, error) {
	raw, err := r.store.Get(ctx, QRPathKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return "", nil
		}
		return "", apperr.Storage("failed to fetch QR path", err)
	}

	var path string
	if err := json.Unmarshal(raw, &path); err != nil {
		return "", apperr.Storage("failed to decode QR path", err)
	}

	return path, nil
}

func (r *settingsRepository) SetQRPath(ctx context.Context, path string) error {
	data, err := json.Marshal(path)
	if err != nil {
		return err
	}

	if err := r.store.Set(ctx, QRPathKey, data); err != nil {
		return apperr.Storage("failed to save QR path", err)
	}

	return nil
}

func (r *settingsRepository) DeleteQRPath(ctx context.Context) error {
	if err := r.store.Delete(ctx, QRPathKey); err != nil {
		return apperr.Storage("failed to delete QR path", err)
	}
	return nil
}
