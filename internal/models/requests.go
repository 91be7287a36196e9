package models

import (
	"github.com/go-playground/validator/v10"
)

type CreatePostRequest struct {
	Title     string    `json:"title" validate:"required"`
	Content   string    `json:"content" validate:"required"`
	Category  string    `json:"category" validate:"required,category"`
	MediaData string    `json:"mediaData,omitempty"`
	MediaType MediaType `json:"mediaType,omitempty" validate:"omitempty,oneof=image video"`
}

// HasMedia reports whether the request carries an upload. Both the payload
// and its type are needed.
func (r CreatePostRequest) HasMedia() bool {
	return r.MediaData != "" && r.MediaType != ""
}

type CreateCommentRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

type CreateReplyRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

type QRImageRequest struct {
	ImageData string `json:"imageData"`
}

// NewValidator returns a validator with the "category" rule registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return IsValidCategory(fl.Field().String())
	})
	return v
}
