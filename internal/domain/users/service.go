package users

import (
	"context"
	"fmt"

	"artfolio/internal/core/blob"
	"artfolio/internal/core/tx"
	"artfolio/internal/domain/audit"
	"artfolio/pkg/logger"
)

// Service provides profile business logic.
type Service struct {
	repo      Repository
	txManager tx.Manager
	blobs     blob.Store
	auditor   audit.Recorder
}

// NewService creates a new users service.
func NewService(repo Repository, txManager tx.Manager, blobs blob.Store, auditor audit.Recorder) *Service {
	if auditor == nil {
		auditor = audit.Noop{}
	}
	return &Service{repo: repo, txManager: txManager, blobs: blobs, auditor: auditor}
}

// GetProfile returns the public profile with resolved image URLs.
func (s *Service) GetProfile(ctx context.Context, username string) (*Profile, error) {
	row, err := s.repo.GetProfile(ctx, username)
	if err != nil {
		return nil, err
	}

	summary := ""
	if row.Summary != nil {
		summary = *row.Summary
	}

	return &Profile{
		Username:   row.Username,
		ProfilePic: s.imageURL(row.ProfilePicID, row.ProfilePicVersion),
		BannerPic:  s.imageURL(row.BannerPicID, row.BannerPicVersion),
		Summary:    summary,
	}, nil
}

// EditProfile updates summary text and profile/banner images.
//
// Images go to the blob store first, on a stable per-user key with
// overwrite, so a failed database write can only orphan a blob version,
// never leave the row pointing at a missing object. The row update then
// runs under the user's own row lock.
func (s *Service) EditProfile(ctx context.Context, username string, req EditRequest) (*Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var profileUpd, bannerUpd *ImageUpdate

	if req.ProfilePic != nil {
		obj, err := s.blobs.Upload(ctx, req.ProfilePic, fmt.Sprintf("profiles/%s/avatar", username), true)
		if err != nil {
			return nil, err
		}
		profileUpd = &ImageUpdate{ID: obj.ID, Version: obj.Version}
	}

	if req.BannerPic != nil {
		obj, err := s.blobs.Upload(ctx, req.BannerPic, fmt.Sprintf("profiles/%s/banner", username), true)
		if err != nil {
			return nil, err
		}
		bannerUpd = &ImageUpdate{ID: obj.ID, Version: obj.Version}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockUser(ctx, username); err != nil {
			return err
		}
		if err := s.repo.UpdateProfile(ctx, username, req.Summary, profileUpd, bannerUpd); err != nil {
			return err
		}
		s.auditor.Record(ctx, audit.ActionEditProfile, "user", username, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "profile updated", "username", username)

	return s.GetProfile(ctx, username)
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
