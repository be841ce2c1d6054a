package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"artfolio/internal/core/apperror"
	"artfolio/internal/domain/followings"
)

// FollowingRepo is the PostgreSQL follow-pair repository.
type FollowingRepo struct {
	txManager *TxManager
}

var _ followings.Repository = (*FollowingRepo)(nil)

// NewFollowingRepo creates a new following repository.
func NewFollowingRepo(txManager *TxManager) *FollowingRepo {
	return &FollowingRepo{txManager: txManager}
}

// Insert records the follow pair. ON CONFLICT makes re-following a
// no-op, so the operation is idempotent at the storage level.
func (r *FollowingRepo) Insert(ctx context.Context, follower, followed string) error {
	q := builder().
		Insert("followings").
		Columns("follower_name", "followed_name").
		Values(follower, followed).
		Suffix("ON CONFLICT (follower_name, followed_name) DO NOTHING")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert following: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if IsForeignKeyViolation(err) {
			return apperror.NewNotFound("user", followed).WithCause(err)
		}
		return apperror.NewDatabase(fmt.Errorf("insert following: %w", err))
	}

	return nil
}

// Delete removes the pair. Deleting an absent pair is not an error.
func (r *FollowingRepo) Delete(ctx context.Context, follower, followed string) error {
	q := builder().
		Delete("followings").
		Where(squirrel.Eq{"follower_name": follower, "followed_name": followed})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete following: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("delete following: %w", err))
	}

	return nil
}

// ListFollowing returns one page of followed users ordered by username,
// plus the total count.
func (r *FollowingRepo) ListFollowing(ctx context.Context, follower string, limit, offset int) ([]followings.FollowedUser, int, error) {
	querier := r.txManager.GetQuerier(ctx)

	countQ := builder().
		Select("COUNT(*)").
		From("followings").
		Where(squirrel.Eq{"follower_name": follower})

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count followings: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperror.NewDatabase(fmt.Errorf("count followings: %w", err))
	}

	q := builder().
		Select("u.username", "u.profile_pic_id", "u.profile_pic_version").
		From("followings fw").
		Join("users u ON u.username = fw.followed_name").
		Where(squirrel.Eq{"fw.follower_name": follower}).
		OrderBy("u.username").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list followings: %w", err)
	}

	var list []followings.FollowedUser
	if err := pgxscan.Select(ctx, querier, &list, sql, args...); err != nil {
		return nil, 0, apperror.NewDatabase(fmt.Errorf("list followings: %w", err))
	}

	return list, total, nil
}
