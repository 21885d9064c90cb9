package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/jdholdren/sitekit/internal/sitekit"
)

const commentNamespace = "-cmt"

func (r Repo) InsertComment(ctx context.Context, c sitekit.Comment) (sitekit.Comment, error) {
	const q = `INSERT INTO comments (id, content_type, object_id, user_id, body, is_public)
	VALUES (:id, :content_type, :object_id, :user_id, :body, :is_public);`

	c.ID = uuid.NewString() + commentNamespace
	if _, err := r.db.NamedExecContext(ctx, q, c); err != nil {
		return sitekit.Comment{}, fmt.Errorf("error inserting comment: %w", err)
	}

	var stored sitekit.Comment
	if err := r.db.GetContext(ctx, &stored, `SELECT * FROM comments WHERE id = ?;`, c.ID); err != nil {
		return sitekit.Comment{}, fmt.Errorf("error fetching created comment: %w", err)
	}

	return stored, nil
}

func (r Repo) ObjectComments(ctx context.Context, ref sitekit.ObjectRef, limit, offset int) ([]sitekit.Comment, error) {
	query, args, err := sq.Select("*").
		From("comments").
		Where(sq.Eq{
			"content_type": ref.ContentType,
			"object_id":    ref.ObjectID,
			"is_public":    true,
		}).
		OrderBy("created_at", "rowid").
		Limit(uint64(max(limit, 0))).
		Offset(uint64(max(offset, 0))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	comments := []sitekit.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, fmt.Errorf("error fetching comments: %w", err)
	}

	return comments, nil
}

func (r Repo) CountObjectComments(ctx context.Context, ref sitekit.ObjectRef) (int, error) {
	const q = `SELECT COUNT(*) FROM comments WHERE content_type = ? AND object_id = ? AND is_public = 1;`

	var count int
	if err := r.db.GetContext(ctx, &count, q, ref.ContentType, ref.ObjectID); err != nil {
		return 0, fmt.Errorf("error counting comments: %w", err)
	}

	return count, nil
}

func (r Repo) UserCommentCount(ctx context.Context, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM comments c
	JOIN users u ON u.id = c.user_id
	WHERE c.user_id = ? AND c.is_public = 1 AND u.is_active = 1;`

	var count int
	if err := r.db.GetContext(ctx, &count, q, userID); err != nil {
		return 0, fmt.Errorf("error counting user comments: %w", err)
	}

	return count, nil
}

func (r Repo) UserComments(ctx context.Context, userID string, contentType string) ([]sitekit.Comment, error) {
	q := sq.Select("c.*").
		From("comments c").
		Join("users u ON u.id = c.user_id").
		Where(sq.Eq{
			"c.user_id":   userID,
			"c.is_public": true,
			"u.is_active": true,
		}).
		OrderBy("c.created_at", "c.rowid")
	if contentType != "" {
		q = q.Where(sq.Eq{"c.content_type": contentType})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	comments := []sitekit.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, fmt.Errorf("error fetching user comments: %w", err)
	}

	return comments, nil
}
