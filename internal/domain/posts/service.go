package posts

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"artfolio/internal/core/apperror"
	"artfolio/internal/core/blob"
	"artfolio/internal/core/tx"
	"artfolio/internal/domain/audit"
	"artfolio/internal/domain/page"
	"artfolio/pkg/logger"
)

// Service provides post business logic.
type Service struct {
	repo      Repository
	users     UserLocker
	comments  CommentSource
	txManager tx.ReadOnlyManager
	blobs     blob.Store
	auditor   audit.Recorder
}

// NewService creates a new posts service.
func NewService(repo Repository, users UserLocker, comments CommentSource, txManager tx.ReadOnlyManager, blobs blob.Store, auditor audit.Recorder) *Service {
	if auditor == nil {
		auditor = audit.Noop{}
	}
	return &Service{
		repo:      repo,
		users:     users,
		comments:  comments,
		txManager: txManager,
		blobs:     blobs,
		auditor:   auditor,
	}
}

// Upload stores a new post image and its metadata row.
//
// The image goes to the blob store first, under a fresh key. If the
// database write then fails only the blob is orphaned; the reverse order
// could commit a row pointing at an image that never arrived.
func (s *Service) Upload(ctx context.Context, username string, req UploadRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	key := fmt.Sprintf("posts/%s/%s", username, uuid.NewString())
	obj, err := s.blobs.Upload(ctx, req.Image, key, false)
	if err != nil {
		return "", err
	}

	post := &Post{
		PublicID:    obj.ID,
		ArtistName:  username,
		Title:       req.Title,
		Description: req.Description,
		Width:       obj.Width,
		Height:      obj.Height,
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.LockUser(ctx, username); err != nil {
			return err
		}
		if err := s.repo.Insert(ctx, post); err != nil {
			return err
		}
		s.auditor.Record(ctx, audit.ActionUploadPost, "post", post.PublicID, map[string]any{
			"artist": username,
			"title":  req.Title,
		})
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.Info(ctx, "post uploaded", "post_id", post.PublicID, "artist", username)

	return post.PublicID, nil
}

// Delete removes a post owned by username.
//
// The row (with its comments and favorites) is deleted and committed
// first; only then is the blob removed, best effort. A failed blob
// delete leaves an unreferenced image, which is acceptable, whereas
// deleting the blob first could leave a live post with a dead image.
func (s *Service) Delete(ctx context.Context, username, postID string) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		post, err := s.repo.GetForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		if post.ArtistName != username {
			return apperror.NewForbidden("user does not own this post")
		}
		if err := s.repo.Delete(ctx, postID); err != nil {
			return err
		}
		s.auditor.Record(ctx, audit.ActionDeletePost, "post", postID, map[string]any{
			"artist": username,
		})
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, postID); err != nil {
		logger.Warn(ctx, "orphaned blob after post delete",
			"post_id", postID, "error", err.Error())
	}

	logger.Info(ctx, "post deleted", "post_id", postID, "artist", username)

	return nil
}

// Get returns the full post view with its comments. The post and its
// comments are read in one read-only transaction so the detail page is
// a consistent snapshot. viewer may be empty for anonymous reads.
func (s *Service) Get(ctx context.Context, postID, viewer string) (*View, []CommentView, error) {
	var (
		row  *Row
		list []CommentView
	)

	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		row, err = s.repo.GetView(ctx, postID, viewer)
		if err != nil {
			return err
		}

		authorComments, err := s.comments.ListForPost(ctx, postID)
		if err != nil {
			return err
		}

		list = make([]CommentView, 0, len(authorComments))
		for _, c := range authorComments {
			list = append(list, CommentView{
				CommentID: c.ID,
				Poster:    Author{Username: c.Username, ProfilePic: s.imageURL(c.ProfilePicID, c.ProfilePicVersion)},
				Comment:   c.Content,
				PostDate:  c.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return s.view(row), list, nil
}

// ListByArtist pages an artist's posts, newest first.
func (s *Service) ListByArtist(ctx context.Context, artist, viewer string, req page.Request) (*page.Page[ListItem], error) {
	return s.list(ctx, req, func(ctx context.Context) ([]Row, int, error) {
		return s.repo.ListByArtist(ctx, artist, viewer, req)
	})
}

// ListFavoritesOf pages the posts username has favorited, most recently
// favorited first.
func (s *Service) ListFavoritesOf(ctx context.Context, username string, req page.Request) (*page.Page[ListItem], error) {
	return s.list(ctx, req, func(ctx context.Context) ([]Row, int, error) {
		return s.repo.ListFavoritesOf(ctx, username, req)
	})
}

// Trending pages recent posts ranked by engagement.
func (s *Service) Trending(ctx context.Context, viewer string, req page.Request) (*page.Page[ListItem], error) {
	return s.list(ctx, req, func(ctx context.Context) ([]Row, int, error) {
		return s.repo.ListTrending(ctx, viewer, req)
	})
}

// Search pages posts matching query by title or description.
func (s *Service) Search(ctx context.Context, query, viewer string, req page.Request) (*page.Page[ListItem], error) {
	return s.list(ctx, req, func(ctx context.Context) ([]Row, int, error) {
		return s.repo.Search(ctx, query, viewer, req)
	})
}

// FollowingFeed pages posts by artists username follows, newest first.
func (s *Service) FollowingFeed(ctx context.Context, username string, req page.Request) (*page.Page[ListItem], error) {
	return s.list(ctx, req, func(ctx context.Context) ([]Row, int, error) {
		return s.repo.ListFollowingFeed(ctx, username, req)
	})
}

// list runs one listing query in a read-only transaction so the window
// and the total count come from the same snapshot.
func (s *Service) list(ctx context.Context, req page.Request, query func(ctx context.Context) ([]Row, int, error)) (*page.Page[ListItem], error) {
	var (
		rows  []Row
		total int
	)
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		rows, total, err = query(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, ListItem{
			PostID: r.PublicID,
			Src:    s.blobs.URL(r.PublicID, 0),
			Title:  r.Title,
			Width:  r.Width,
			Height: r.Height,
			User:   Author{Username: r.ArtistName, ProfilePic: s.imageURL(r.ProfilePicID, r.ProfilePicVersion)},
		})
	}

	result := page.New(items, total, req.Limit)
	return &result, nil
}

func (s *Service) view(r *Row) *View {
	return &View{
		PostID:      r.PublicID,
		Src:         s.blobs.URL(r.PublicID, 0),
		Title:       r.Title,
		Description: r.Description,
		Width:       r.Width,
		Height:      r.Height,
		Favorited:   r.Favorited,
		PostDate:    r.CreatedAt,
		User:        Author{Username: r.ArtistName, ProfilePic: s.imageURL(r.ProfilePicID, r.ProfilePicVersion)},
	}
}

func (s *Service) imageURL(id *string, version *int64) *string {
	if id == nil || *id == "" {
		return nil
	}
	var v int64
	if version != nil {
		v = *version
	}
	u := s.blobs.URL(*id, v)
	return &u
}
