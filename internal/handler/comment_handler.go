package handlers

import (
	"net/http"

	"blogcore/internal/models"

	"github.com/gorilla/mux"
)

type CommentResponse struct {
	Comment *models.Comment `json:"comment"`
}

type ReplyResponse struct {
	Reply *models.Reply `json:"reply"`
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["postID"]

	var req models.CreateCommentRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.CommentService.AddComment(r.Context(), postID, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, CommentResponse{Comment: comment}, http.StatusCreated)
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.CommentService.DeleteComment(r.Context(), vars["postID"], vars["commentID"]); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeOK(w)
}

func (h *Handlers) AddReply(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req models.CreateReplyRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	reply, err := h.CommentService.AddReply(r.Context(), vars["postID"], vars["commentID"], req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, ReplyResponse{Reply: reply}, http.StatusCreated)
}

func (h *Handlers) DeleteReply(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	err := h.CommentService.DeleteReply(r.Context(), vars["postID"], vars["commentID"], vars["replyID"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeOK(w)
}
