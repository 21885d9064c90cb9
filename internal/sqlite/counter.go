package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/jdholdren/sitekit/internal/sitekit"
)

const visitNamespace = "-vst"

func (r Repo) CountObject(ctx context.Context, ref sitekit.ObjectRef, userID string) error {
	const q = `INSERT INTO object_visits (id, content_type, object_id, user_id)
	VALUES (:id, :content_type, :object_id, :user_id);`

	v := sitekit.Visit{
		ID:        uuid.NewString() + visitNamespace,
		ObjectRef: ref,
	}
	if userID != "" {
		v.UserID = &userID
	}
	if _, err := r.db.NamedExecContext(ctx, q, v); err != nil {
		return fmt.Errorf("error recording visit: %w", err)
	}

	return nil
}

func (r Repo) Visits(ctx context.Context, ref sitekit.ObjectRef) (int, error) {
	const q = `SELECT COUNT(*) FROM object_visits WHERE content_type = ? AND object_id = ?;`

	var count int
	if err := r.db.GetContext(ctx, &count, q, ref.ContentType, ref.ObjectID); err != nil {
		return 0, fmt.Errorf("error counting visits: %w", err)
	}

	return count, nil
}

func (r Repo) MostVisited(ctx context.Context, contentType string, n int) ([]sitekit.ObjectScore, error) {
	if n <= 0 {
		return []sitekit.ObjectScore{}, nil
	}

	query, args, err := sq.Select("object_id", "COUNT(*) AS score").
		From("object_visits").
		Where(sq.Eq{"content_type": contentType}).
		GroupBy("object_id").
		OrderBy("score DESC", "object_id").
		Limit(uint64(n)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	scores := []sitekit.ObjectScore{}
	if err := r.db.SelectContext(ctx, &scores, query, args...); err != nil {
		return nil, fmt.Errorf("error fetching most visited: %w", err)
	}

	return scores, nil
}
