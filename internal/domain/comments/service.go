package comments

import (
	"context"
	"strconv"

	"artfolio/internal/core/tx"
	"artfolio/internal/domain/audit"
	"artfolio/pkg/logger"
)

// Service provides comment business logic.
type Service struct {
	repo      Repository
	users     UserLocker
	txManager tx.Manager
	auditor   audit.Recorder
}

// NewService creates a new comments service.
func NewService(repo Repository, users UserLocker, txManager tx.Manager, auditor audit.Recorder) *Service {
	if auditor == nil {
		auditor = audit.Noop{}
	}
	return &Service{repo: repo, users: users, txManager: txManager, auditor: auditor}
}

// Add stores a comment on a post. The acting user's row is locked first
// to serialize concurrent self-mutations; the inserted id and timestamp
// are read back within the same transaction.
func (s *Service) Add(ctx context.Context, username, postID, content string) (*Comment, error) {
	if err := ValidateContent(content); err != nil {
		return nil, err
	}

	var comment *Comment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.LockUser(ctx, username); err != nil {
			return err
		}
		var err error
		comment, err = s.repo.Insert(ctx, postID, username, content)
		if err != nil {
			return err
		}
		s.auditor.Record(ctx, audit.ActionComment, "comment", strconv.FormatInt(comment.ID, 10), map[string]any{"post_id": postID})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "comment added", "username", username, "post_id", postID, "comment_id", comment.ID)

	return comment, nil
}

// Remove deletes a comment if the caller authored it. Removing a comment
// that is absent or authored by someone else is treated as success.
func (s *Service) Remove(ctx context.Context, username string, commentID int64) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.DeleteByAuthor(ctx, commentID, username); err != nil {
			return err
		}
		s.auditor.Record(ctx, audit.ActionUncomment, "comment", strconv.FormatInt(commentID, 10), nil)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "comment removed", "username", username, "comment_id", commentID)
	return nil
}
