package service

import "github.com/rs/xid"

// NewID returns a time-ordered, collision-resistant identifier.
func NewID() string {
	return xid.New().String()
}
