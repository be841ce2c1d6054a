package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"artfolio/internal/core/apperror"
	"artfolio/internal/domain/comments"
)

// CommentRepo is the PostgreSQL comment repository.
type CommentRepo struct {
	txManager *TxManager
}

var _ comments.Repository = (*CommentRepo)(nil)

// NewCommentRepo creates a new comment repository.
func NewCommentRepo(txManager *TxManager) *CommentRepo {
	return &CommentRepo{txManager: txManager}
}

// Insert stores a comment and reads back the server-assigned id and
// timestamp in the same statement. A foreign-key breach maps to the
// missing referenced entity by constraint name.
func (r *CommentRepo) Insert(ctx context.Context, postID, username, content string) (*comments.Comment, error) {
	q := builder().
		Insert("comments").
		Columns("post_public_id", "username", "content").
		Values(postID, username, content).
		Suffix("RETURNING id, created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert comment: %w", err)
	}

	comment := &comments.Comment{
		PostID:   postID,
		Username: username,
		Content:  content,
	}
	err = r.txManager.GetQuerier(ctx).
		QueryRow(ctx, sql, args...).
		Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			if strings.Contains(ConstraintName(err), "post") {
				return nil, apperror.NewNotFound("post", postID).WithCause(err)
			}
			return nil, apperror.NewNotFound("user", username).WithCause(err)
		}
		return nil, apperror.NewDatabase(fmt.Errorf("insert comment: %w", err))
	}

	return comment, nil
}

// DeleteByAuthor removes a comment only when username authored it.
// Matching zero rows, whatever the reason, is not an error.
func (r *CommentRepo) DeleteByAuthor(ctx context.Context, commentID int64, username string) error {
	q := builder().
		Delete("comments").
		Where(squirrel.Eq{"id": commentID, "username": username})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete comment: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("delete comment: %w", err))
	}

	return nil
}

// ListForPost returns all comments on a post joined with each author's
// profile image, newest first.
func (r *CommentRepo) ListForPost(ctx context.Context, postID string) ([]comments.AuthorComment, error) {
	q := builder().
		Select("c.id", "c.username", "u.profile_pic_id", "u.profile_pic_version",
			"c.content", "c.created_at").
		From("comments c").
		Join("users u ON u.username = c.username").
		Where(squirrel.Eq{"c.post_public_id": postID}).
		OrderBy("c.created_at DESC", "c.id DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list comments: %w", err)
	}

	var list []comments.AuthorComment
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &list, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list comments: %w", err))
	}

	return list, nil
}
