package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"artfolio/internal/core/apperror"
	"artfolio/internal/domain/page"
	"artfolio/internal/domain/posts"
)

// trendingWindow bounds the trending listing to recent uploads.
const trendingWindow = "7 days"

// PostRepo is the PostgreSQL post repository.
type PostRepo struct {
	txManager *TxManager
}

var _ posts.Repository = (*PostRepo)(nil)

// NewPostRepo creates a new post repository.
func NewPostRepo(txManager *TxManager) *PostRepo {
	return &PostRepo{txManager: txManager}
}

// Insert stores a new post. A foreign-key breach means the artist row
// vanished between the blob upload and this write.
func (r *PostRepo) Insert(ctx context.Context, post *posts.Post) error {
	q := builder().
		Insert("posts").
		Columns("public_id", "artist_name", "title", "description", "width", "height").
		Values(post.PublicID, post.ArtistName, post.Title, post.Description, post.Width, post.Height)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert post: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if IsForeignKeyViolation(err) {
			return apperror.NewNotFound("user", post.ArtistName).WithCause(err)
		}
		if IsUniqueViolation(err) {
			return apperror.NewDuplicate("post", "public_id").WithCause(err)
		}
		return apperror.NewDatabase(fmt.Errorf("insert post: %w", err))
	}

	return nil
}

// GetForUpdate loads a post row locked for the rest of the transaction.
func (r *PostRepo) GetForUpdate(ctx context.Context, publicID string) (*posts.Post, error) {
	q := builder().
		Select("public_id", "artist_name", "title", "description", "width", "height", "created_at").
		From("posts").
		Where(squirrel.Eq{"public_id": publicID}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock post: %w", err)
	}

	var post posts.Post
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &post, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("post", publicID)
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get post for update: %w", err))
	}

	return &post, nil
}

// Delete removes a post. Comments and favorites go with it via cascade.
func (r *PostRepo) Delete(ctx context.Context, publicID string) error {
	q := builder().
		Delete("posts").
		Where(squirrel.Eq{"public_id": publicID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete post: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("delete post: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("post", publicID)
	}

	return nil
}

// GetView loads one post joined with its artist and the viewer's
// favorited flag.
func (r *PostRepo) GetView(ctx context.Context, publicID, viewer string) (*posts.Row, error) {
	q := r.baseView(viewer).
		Where(squirrel.Eq{"p.public_id": publicID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select post: %w", err)
	}

	var row posts.Row
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("post", publicID)
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get post: %w", err))
	}

	return &row, nil
}

// ListByArtist pages the artist's posts, newest first.
func (r *PostRepo) ListByArtist(ctx context.Context, artist, viewer string, req page.Request) ([]posts.Row, int, error) {
	q := r.baseView(viewer).
		Where(squirrel.Eq{"p.artist_name": artist}).
		OrderBy("p.created_at DESC", "p.public_id")

	return r.listPage(ctx, q, req)
}

// ListFavoritesOf pages posts username favorited, most recent favorite
// first.
func (r *PostRepo) ListFavoritesOf(ctx context.Context, username string, req page.Request) ([]posts.Row, int, error) {
	q := r.baseView(username).
		Join("favorites fav ON fav.post_public_id = p.public_id").
		Where(squirrel.Eq{"fav.username": username}).
		OrderBy("fav.favorited_at DESC", "p.public_id")

	return r.listPage(ctx, q, req)
}

// ListTrending pages recent posts ranked by engagement: favorites plus
// comments over the trailing window, ties broken by recency.
func (r *PostRepo) ListTrending(ctx context.Context, viewer string, req page.Request) ([]posts.Row, int, error) {
	q := r.baseView(viewer).
		Where(squirrel.Expr("p.created_at > now() - interval '" + trendingWindow + "'")).
		OrderBy(
			"(SELECT count(*) FROM favorites tf WHERE tf.post_public_id = p.public_id)"+
				" + (SELECT count(*) FROM comments tc WHERE tc.post_public_id = p.public_id) DESC",
			"p.created_at DESC",
			"p.public_id",
		)

	return r.listPage(ctx, q, req)
}

// Search pages posts whose title or description matches query, newest
// first.
func (r *PostRepo) Search(ctx context.Context, query, viewer string, req page.Request) ([]posts.Row, int, error) {
	pattern := "%" + query + "%"
	q := r.baseView(viewer).
		Where(squirrel.Or{
			squirrel.ILike{"p.title": pattern},
			squirrel.ILike{"p.description": pattern},
		}).
		OrderBy("p.created_at DESC", "p.public_id")

	return r.listPage(ctx, q, req)
}

// ListFollowingFeed pages posts by artists username follows, newest
// first.
func (r *PostRepo) ListFollowingFeed(ctx context.Context, username string, req page.Request) ([]posts.Row, int, error) {
	q := r.baseView(username).
		Join("followings fw ON fw.followed_name = p.artist_name").
		Where(squirrel.Eq{"fw.follower_name": username}).
		OrderBy("p.created_at DESC", "p.public_id")

	return r.listPage(ctx, q, req)
}

// baseView selects the listing projection: posts joined with the
// artist's profile image and the viewer's favorited flag. An empty
// viewer yields favorited = false on every row.
func (r *PostRepo) baseView(viewer string) squirrel.SelectBuilder {
	return builder().
		Select(
			"p.public_id", "p.artist_name", "p.title", "p.description",
			"p.width", "p.height", "p.created_at",
			"u.profile_pic_id", "u.profile_pic_version",
		).
		Column(squirrel.Expr(
			"EXISTS (SELECT 1 FROM favorites f WHERE f.post_public_id = p.public_id AND f.username = ?) AS favorited",
			viewer,
		)).
		From("posts p").
		Join("users u ON u.username = p.artist_name")
}

// listPage runs the count and the window for one listing. Both execute
// on the caller's querier, so inside a read-only transaction they see
// one snapshot.
func (r *PostRepo) listPage(ctx context.Context, q squirrel.SelectBuilder, req page.Request) ([]posts.Row, int, error) {
	querier := r.txManager.GetQuerier(ctx)

	countQ := builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperror.NewDatabase(fmt.Errorf("count posts: %w", err))
	}

	q = q.Limit(uint64(req.Limit)).Offset(uint64(req.Offset()))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	var rows []posts.Row
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, 0, apperror.NewDatabase(fmt.Errorf("list posts: %w", err))
	}

	return rows, total, nil
}
