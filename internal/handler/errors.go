package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"blogcore/internal/apperr"
)

const (
	msgInvalidBody  = "Invalid request body"
	msgBodyTooLarge = "Request body too large"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

func WriteError(w http.ResponseWriter, message string, statusCode int) {
	writeSuccess(w, ErrorResponse{Error: message}, statusCode)
}

func writeSuccess(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeOK(w http.ResponseWriter) {
	writeSuccess(w, OKResponse{OK: true}, http.StatusOK)
}

// writeServiceError maps an error kind to its status. Unclassified errors are
// logged and their text is returned as is.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		WriteError(w, apperr.Message(err), http.StatusBadRequest)
	case errors.Is(err, apperr.ErrNotFound):
		WriteError(w, apperr.Message(err), http.StatusNotFound)
	case errors.Is(err, apperr.ErrConflict):
		WriteError(w, apperr.Message(err), http.StatusConflict)
	default:
		h.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// decodeJSON reads at most Cfg.MaxBodySize bytes into dst and writes the
// error response itself when it returns false.
func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if h.Cfg != nil && h.Cfg.MaxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxBodySize)
	}

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, msgBodyTooLarge, http.StatusRequestEntityTooLarge)
	} else {
		WriteError(w, msgInvalidBody, http.StatusBadRequest)
	}
	return false
}
