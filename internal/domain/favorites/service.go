package favorites

import (
	"context"

	"artfolio/internal/core/tx"
	"artfolio/internal/domain/audit"
	"artfolio/pkg/logger"
)

// Service provides favorite/unfavorite business logic.
type Service struct {
	repo      Repository
	users     UserLocker
	txManager tx.Manager
	auditor   audit.Recorder
}

// NewService creates a new favorites service.
func NewService(repo Repository, users UserLocker, txManager tx.Manager, auditor audit.Recorder) *Service {
	if auditor == nil {
		auditor = audit.Noop{}
	}
	return &Service{repo: repo, users: users, txManager: txManager, auditor: auditor}
}

// Favorite records that username favorited postID. The acting user's row
// is locked first; concurrent upserts on the same pair settle on a single
// row whose timestamp reflects the most recent call.
func (s *Service) Favorite(ctx context.Context, username, postID string) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.LockUser(ctx, username); err != nil {
			return err
		}
		if err := s.repo.Upsert(ctx, username, postID); err != nil {
			return err
		}
		s.auditor.Record(ctx, audit.ActionFavorite, "favorite", username+"/"+postID, nil)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "favorite added", "username", username, "post_id", postID)
	return nil
}

// Unfavorite removes the favorite; absent pairs succeed silently.
func (s *Service) Unfavorite(ctx context.Context, username, postID string) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, username, postID); err != nil {
			return err
		}
		s.auditor.Record(ctx, audit.ActionUnfavorite, "favorite", username+"/"+postID, nil)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "favorite removed", "username", username, "post_id", postID)
	return nil
}
