// Package sqlite implements the sitekit repositories on top of a sqlite database.
package sqlite

import (
	"github.com/jmoiron/sqlx"

	"github.com/jdholdren/sitekit/internal/sitekit"
)

// Ensure Repo implements the Repository interface
var _ sitekit.Repository = (*Repo)(nil)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db}
}
