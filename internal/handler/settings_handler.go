package handlers

import (
	"net/http"

	"blogcore/internal/models"
)

// QRResponse carries a signed URL, or null when no QR image is set.
type QRResponse struct {
	QRImageURL *string `json:"qrImageUrl"`
}

func (h *Handlers) GetQR(w http.ResponseWriter, r *http.Request) {
	url, err := h.SettingsService.GetQR(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, QRResponse{QRImageURL: url}, http.StatusOK)
}

func (h *Handlers) SetQR(w http.ResponseWriter, r *http.Request) {
	var req models.QRImageRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	url, err := h.SettingsService.SetQR(r.Context(), req.ImageData)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, QRResponse{QRImageURL: url}, http.StatusOK)
}

func (h *Handlers) DeleteQR(w http.ResponseWriter, r *http.Request) {
	if err := h.SettingsService.DeleteQR(r.Context()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeOK(w)
}
