// Package sitekit holds the domain types shared by the storage and HTTP layers.
package sitekit

import (
	"errors"
)

var ErrNotFound = errors.New("resource not found")

// ObjectRef points at any piece of site content by its kind and id.
type ObjectRef struct {
	ContentType string `db:"content_type"`
	ObjectID    string `db:"object_id"`
}

// Repository is everything the API needs from storage.
type Repository interface {
	UserService
	CounterService
	CommentService
}
