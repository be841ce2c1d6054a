package followings

import (
	"context"

	"artfolio/internal/core/apperror"
	"artfolio/internal/core/blob"
	"artfolio/internal/core/tx"
	"artfolio/internal/domain/audit"
	"artfolio/internal/domain/page"
	"artfolio/pkg/logger"
)

// Service provides follow/unfollow business logic.
type Service struct {
	repo      Repository
	users     UserLocker
	txManager tx.ReadOnlyManager
	blobs     blob.Store
	auditor   audit.Recorder
}

// NewService creates a new followings service.
func NewService(repo Repository, users UserLocker, txManager tx.ReadOnlyManager, blobs blob.Store, auditor audit.Recorder) *Service {
	if auditor == nil {
		auditor = audit.Noop{}
	}
	return &Service{repo: repo, users: users, txManager: txManager, blobs: blobs, auditor: auditor}
}

// Follow records that follower follows followed. Self-follow is rejected
// before any database work. Both rows are locked before the existence
// check so a concurrent deletion cannot invalidate it; the insert itself
// is idempotent.
func (s *Service) Follow(ctx context.Context, follower, followed string) error {
	if follower == followed {
		return apperror.NewValidation("can't follow self").
			WithDetail("field", "user_name")
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.users.LockUsers(ctx, follower, followed)
		if err != nil {
			return err
		}
		if locked < 2 {
			return apperror.NewNotFound("user", followed)
		}
		if err := s.repo.Insert(ctx, follower, followed); err != nil {
			return err
		}
		s.auditor.Record(ctx, audit.ActionFollow, "following", follower+"/"+followed, nil)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "follow added", "follower", follower, "followed", followed)
	return nil
}

// Unfollow removes the pair. Unfollowing someone not followed succeeds.
func (s *Service) Unfollow(ctx context.Context, follower, followed string) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, follower, followed); err != nil {
			return err
		}
		s.auditor.Record(ctx, audit.ActionUnfollow, "following", follower+"/"+followed, nil)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "follow removed", "follower", follower, "followed", followed)
	return nil
}

// List returns one page of the users that follower follows. Count and
// window are read from a single snapshot.
func (s *Service) List(ctx context.Context, follower string, req page.Request) (page.Page[ListEntry], error) {
	var (
		rows  []FollowedUser
		total int
	)
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		rows, total, err = s.repo.ListFollowing(ctx, follower, req.Limit, req.Offset())
		return err
	})
	if err != nil {
		return page.Page[ListEntry]{}, err
	}

	entries := make([]ListEntry, len(rows))
	for i, row := range rows {
		entries[i] = ListEntry{
			Username:   row.Username,
			ProfilePic: s.imageURL(row.ProfilePicID, row.ProfilePicVersion),
		}
	}

	return page.New(entries, total, req.Limit), nil
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
