package models

import (
	"time"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Extension is the file extension used for stored media of this type.
func (m MediaType) Extension() string {
	if m == MediaVideo {
		return "mp4"
	}
	return "jpg"
}

type Reply struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Replies   []Reply   `json:"replies"`
}

// Post is the persisted aggregate. MediaPath is a storage key and never
// leaves the server; clients see EnrichedPost.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	MediaPath string    `json:"mediaPath,omitempty"`
	MediaType MediaType `json:"mediaType,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Comments  []Comment `json:"comments"`
}

// EnrichedPost is the read-side view of a Post. MediaURL is a time-limited
// signed URL and must not be persisted.
type EnrichedPost struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	MediaURL  *string   `json:"mediaUrl"`
	MediaType MediaType `json:"mediaType,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Comments  []Comment `json:"comments"`
}

// Normalize replaces nil comment and reply slices with empty ones.
func (p *Post) Normalize() {
	p.Comments = normalizeComments(p.Comments)
}

func (p *EnrichedPost) Normalize() {
	p.Comments = normalizeComments(p.Comments)
}

func normalizeComments(comments []Comment) []Comment {
	if comments == nil {
		return []Comment{}
	}
	for i := range comments {
		if comments[i].Replies == nil {
			comments[i].Replies = []Reply{}
		}
	}
	return comments
}

// FindComment returns the index of the comment with the given id, or -1.
func FindComment(comments []Comment, id string) int {
	for i := range comments {
		if comments[i].ID == id {
			return i
		}
	}
	return -1
}

func WithoutComment(comments []Comment, id string) []Comment {
	kept := make([]Comment, 0, len(comments))
	for _, c := range comments {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	return kept
}

func WithoutReply(replies []Reply, id string) []Reply {
	kept := make([]Reply, 0, len(replies))
	for _, r := range replies {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	return kept
}

// Clone returns a deep copy of the post, including comments and replies.
func (p EnrichedPost) Clone() EnrichedPost {
	clone := p
	if p.MediaURL != nil {
		u := *p.MediaURL
		clone.MediaURL = &u
	}
	if p.Comments != nil {
		clone.Comments = make([]Comment, len(p.Comments))
		for i, c := range p.Comments {
			clone.Comments[i] = c
			if c.Replies != nil {
				clone.Comments[i].Replies = make([]Reply, len(c.Replies))
				copy(clone.Comments[i].Replies, c.Replies)
			}
		}
	}
	return clone
}
