// Package cloudinary implements the blob store port on Cloudinary.
package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"artfolio/internal/core/apperror"
	"artfolio/internal/core/blob"
	"artfolio/pkg/logger"
)

// Config holds Cloudinary credentials.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Store is the Cloudinary-backed blob store.
type Store struct {
	cld *cloudinary.Cloudinary
}

var _ blob.Store = (*Store)(nil)

// New creates a Cloudinary blob store.
func New(cfg Config) (*Store, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Store{cld: cld}, nil
}

// Upload stores the image under key. The returned object carries the
// version Cloudinary assigned; overwrites of the same key bump it, and
// delivery URLs embed it to bust CDN caches.
func (s *Store) Upload(ctx context.Context, r io.Reader, key string, overwrite bool) (*blob.Object, error) {
	result, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:   key,
		Overwrite:  api.Bool(overwrite),
		Invalidate: api.Bool(overwrite),
	})
	if err != nil {
		return nil, apperror.NewBlobStore(fmt.Errorf("upload %s: %w", key, err))
	}
	// The SDK reports API-level failures in the body, not the error.
	if result.Error.Message != "" {
		return nil, apperror.NewBlobStore(fmt.Errorf("upload %s: %s", key, result.Error.Message))
	}

	return &blob.Object{
		ID:      result.PublicID,
		Width:   result.Width,
		Height:  result.Height,
		URL:     result.SecureURL,
		Version: int64(result.Version),
	}, nil
}

// Delete removes the object. Destroying an unknown id reports "not
// found", which callers treat as already deleted.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:   id,
		Invalidate: api.Bool(true),
	})
	if err != nil {
		return apperror.NewBlobStore(fmt.Errorf("destroy %s: %w", id, err))
	}
	if result.Result != "ok" && result.Result != "not found" {
		return apperror.NewBlobStore(errors.New("destroy " + id + ": " + result.Result))
	}
	if result.Result == "not found" {
		logger.Debug(ctx, "blob already absent", "id", id)
	}
	return nil
}

// URL builds a delivery URL locally, without an API call. A version of
// 0 omits the version component and serves the latest upload.
func (s *Store) URL(id string, version int64) string {
	img, err := s.cld.Image(id)
	if err != nil {
		return ""
	}
	if version > 0 {
		img.Version = int(version)
	}
	u, err := img.String()
	if err != nil {
		return ""
	}
	return u
}
