package handlers

import (
	"net/http"

	"blogcore/internal/models"

	"github.com/gorilla/mux"
)

type PostsResponse struct {
	Posts []*models.EnrichedPost `json:"posts"`
}

type PostResponse struct {
	Post *models.EnrichedPost `json:"post"`
}

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.ListPosts(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if posts == nil {
		posts = []*models.EnrichedPost{}
	}
	writeSuccess(w, PostsResponse{Posts: posts}, http.StatusOK)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["postID"]

	post, err := h.PostService.GetPost(r.Context(), postID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, PostResponse{Post: post}, http.StatusOK)
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePostRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	post, err := h.PostService.CreatePost(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, PostResponse{Post: post}, http.StatusCreated)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["postID"]

	if err := h.PostService.DeletePost(r.Context(), postID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeOK(w)
}
