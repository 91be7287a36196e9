package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

type HealthResponse struct {
	Status string `json:"status"`
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health.Ping(r.Context()); err != nil {
			h.Logger.Error("health check failed", "err", err)
			writeSuccess(w, HealthResponse{Status: "unavailable"}, http.StatusServiceUnavailable)
			return
		}
	}

	writeSuccess(w, HealthResponse{Status: "ok"}, http.StatusOK)
}

// NewRouter mounts every endpoint under prefix.
func NewRouter(h *Handlers, prefix string) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, "Not found", http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	api := router
	if prefix != "" && prefix != "/" {
		api = router.PathPrefix(prefix).Subrouter()
	}

	api.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)

	api.HandleFunc("/posts", h.GetPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts", h.CreatePost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{postID}", h.GetPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{postID}", h.DeletePost).Methods(http.MethodDelete)

	api.HandleFunc("/posts/{postID}/comments", h.AddComment).Methods(http.MethodPost)
	api.HandleFunc("/posts/{postID}/comments/{commentID}", h.DeleteComment).Methods(http.MethodDelete)
	api.HandleFunc("/posts/{postID}/comments/{commentID}/replies", h.AddReply).Methods(http.MethodPost)
	api.HandleFunc("/posts/{postID}/comments/{commentID}/replies/{replyID}", h.DeleteReply).Methods(http.MethodDelete)

	api.HandleFunc("/settings/qr", h.GetQR).Methods(http.MethodGet)
	api.HandleFunc("/settings/qr", h.SetQR).Methods(http.MethodPost)
	api.HandleFunc("/settings/qr", h.DeleteQR).Methods(http.MethodDelete)

	return router
}
