package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"artfolio/internal/core/apperror"
	"artfolio/internal/domain/auth"
	"artfolio/internal/domain/users"
)

// builder returns a squirrel builder with PostgreSQL placeholders.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

var userCols = []string{
	"username", "password_hash",
	"profile_pic_id", "profile_pic_version",
	"banner_pic_id", "banner_pic_version",
	"summary", "created_at",
}

// UserRepo is the PostgreSQL user repository. It backs the auth and
// users services and provides row locks for every mutation that acts on
// behalf of a user.
type UserRepo struct {
	txManager *TxManager
}

var (
	_ auth.UserRepository = (*UserRepo)(nil)
	_ users.Repository    = (*UserRepo)(nil)
)

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *TxManager) *UserRepo {
	return &UserRepo{txManager: txManager}
}

// Create inserts a new user. A unique-key breach on the username maps to
// a duplicate-entry error.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	q := builder().
		Insert("users").
		Columns("username", "password_hash").
		Values(user.Username, user.PasswordHash)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if IsUniqueViolation(err) {
			return apperror.NewDuplicate("user", "username").WithCause(err)
		}
		return apperror.NewDatabase(fmt.Errorf("insert user: %w", err))
	}

	return nil
}

// GetByUsername retrieves the full user row.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	q := builder().
		Select(userCols...).
		From("users").
		Where(squirrel.Eq{"username": username}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user: %w", err)
	}

	var user auth.User
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", username)
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get user: %w", err))
	}

	return &user, nil
}

// GetProfile retrieves the public profile projection.
func (r *UserRepo) GetProfile(ctx context.Context, username string) (*users.ProfileRow, error) {
	q := builder().
		Select("username", "profile_pic_id", "profile_pic_version",
			"banner_pic_id", "banner_pic_version", "summary").
		From("users").
		Where(squirrel.Eq{"username": username}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select profile: %w", err)
	}

	var row users.ProfileRow
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", username)
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get profile: %w", err))
	}

	return &row, nil
}

// LockUser takes a row lock on the user for the rest of the transaction.
// Mutations lock the acting user before touching dependent rows so
// concurrent writes by the same user serialize here.
func (r *UserRepo) LockUser(ctx context.Context, username string) error {
	n, err := r.LockUsers(ctx, username)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NewNotFound("user", username)
	}
	return nil
}

// LockUsers locks the given users' rows and returns how many exist.
// Rows are locked in sorted username order so two transactions locking
// the same pair cannot deadlock on ordering.
func (r *UserRepo) LockUsers(ctx context.Context, usernames ...string) (int, error) {
	sorted := make([]string, len(usernames))
	copy(sorted, usernames)
	sort.Strings(sorted)

	q := builder().
		Select("username").
		From("users").
		Where(squirrel.Eq{"username": sorted}).
		OrderBy("username").
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build lock users: %w", err)
	}

	var locked []string
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &locked, sql, args...); err != nil {
		return 0, apperror.NewDatabase(fmt.Errorf("lock users: %w", err))
	}

	return len(locked), nil
}

// UpdateProfile applies the non-nil changes to the user row. The caller
// holds the row lock, so the row is known to exist.
func (r *UserRepo) UpdateProfile(ctx context.Context, username string, summary *string, profile, banner *users.ImageUpdate) error {
	q := builder().
		Update("users").
		Where(squirrel.Eq{"username": username})

	if summary != nil {
		q = q.Set("summary", *summary)
	}
	if profile != nil {
		q = q.Set("profile_pic_id", profile.ID).
			Set("profile_pic_version", profile.Version)
	}
	if banner != nil {
		q = q.Set("banner_pic_id", banner.ID).
			Set("banner_pic_version", banner.Version)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update profile: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("update profile: %w", err))
	}

	return nil
}
