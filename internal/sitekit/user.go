package sitekit

import (
	"context"
	"time"
)

type UserService interface {
	EnsureUser(ctx context.Context, usr User) (User, error)
	User(ctx context.Context, id string) (User, error)
	SetUserActive(ctx context.Context, id string, active bool) error
}

type User struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
