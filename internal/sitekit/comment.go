package sitekit

import (
	"context"
	"time"
)

type (
	CommentService interface {
		InsertComment(ctx context.Context, c Comment) (Comment, error)
		// Public comments on an object, oldest first.
		ObjectComments(ctx context.Context, ref ObjectRef, limit, offset int) ([]Comment, error)
		CountObjectComments(ctx context.Context, ref ObjectRef) (int, error)
		// How many public comments a user has made. Inactive users have none.
		UserCommentCount(ctx context.Context, userID string) (int, error)
		// A user's public comments, optionally limited to one content type.
		// Inactive users have none.
		UserComments(ctx context.Context, userID string, contentType string) ([]Comment, error)
	}

	Comment struct {
		ID string `db:"id"`
		ObjectRef
		UserID    string    `db:"user_id"`
		Body      string    `db:"body"`
		IsPublic  bool      `db:"is_public"`
		CreatedAt time.Time `db:"created_at"`
	}
)
