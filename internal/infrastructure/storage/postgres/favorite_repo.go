package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"artfolio/internal/core/apperror"
	"artfolio/internal/domain/favorites"
)

// FavoriteRepo is the PostgreSQL favorite repository.
type FavoriteRepo struct {
	txManager *TxManager
}

var _ favorites.Repository = (*FavoriteRepo)(nil)

// NewFavoriteRepo creates a new favorite repository.
func NewFavoriteRepo(txManager *TxManager) *FavoriteRepo {
	return &FavoriteRepo{txManager: txManager}
}

// Upsert records the favorite. Re-favoriting refreshes the timestamp so
// the post moves to the top of the user's favorites listing.
func (r *FavoriteRepo) Upsert(ctx context.Context, username, postID string) error {
	q := builder().
		Insert("favorites").
		Columns("username", "post_public_id").
		Values(username, postID).
		Suffix("ON CONFLICT (username, post_public_id) DO UPDATE SET favorited_at = now()")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert favorite: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if IsForeignKeyViolation(err) {
			return apperror.NewNotFound("post", postID).WithCause(err)
		}
		return apperror.NewDatabase(fmt.Errorf("upsert favorite: %w", err))
	}

	return nil
}

// Delete removes the favorite. Deleting an absent pair is not an error.
func (r *FavoriteRepo) Delete(ctx context.Context, username, postID string) error {
	q := builder().
		Delete("favorites").
		Where(squirrel.Eq{"username": username, "post_public_id": postID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete favorite: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("delete favorite: %w", err))
	}

	return nil
}
