package sitekit

import (
	"context"
	"time"
)

type (
	CounterService interface {
		// Records one visit of the object, attributed to userID when it's not empty.
		CountObject(ctx context.Context, ref ObjectRef, userID string) error
		Visits(ctx context.Context, ref ObjectRef) (int, error)
		// The n most visited objects of a content type, most visited first.
		MostVisited(ctx context.Context, contentType string, n int) ([]ObjectScore, error)
	}

	// Visit is a single recorded view of an object.
	Visit struct {
		ID string `db:"id"`
		ObjectRef
		UserID    *string   `db:"user_id"`
		VisitedAt time.Time `db:"visited_at"`
	}

	ObjectScore struct {
		ObjectID string `db:"object_id" json:"object_id" xml:"object_id" yaml:"object_id"`
		Score    int    `db:"score" json:"score" xml:"score" yaml:"score"`
	}
)
