package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"artfolio/internal/core/apperror"
	"artfolio/internal/core/blob"
	"artfolio/internal/core/tx"
	"artfolio/internal/domain/audit"
	"artfolio/pkg/logger"
)

// credentialsIncorrect is returned for both unknown usernames and wrong
// passwords, so callers cannot probe which usernames exist.
const credentialsIncorrect = "user credentials incorrect"

// Service provides registration, login and credential resolution.
type Service struct {
	userRepo   UserRepository
	txManager  tx.Manager
	jwtService *JWTService
	blobs      blob.Store
	auditor    audit.Recorder
}

// NewService creates a new auth service.
func NewService(
	userRepo UserRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	blobs blob.Store,
	auditor audit.Recorder,
) *Service {
	if auditor == nil {
		auditor = audit.Noop{}
	}
	return &Service{
		userRepo:   userRepo,
		txManager:  txManager,
		jwtService: jwtService,
		blobs:      blobs,
		auditor:    auditor,
	}
}

// Register creates an account and issues session credentials.
// A duplicate username surfaces as a duplicate-entry domain error; the
// insert itself is a single statement, so the executor's generic
// transient-conflict retry is all the retry handling it needs.
func (s *Service) Register(ctx context.Context, creds Credentials) (*Account, *TokenPair, error) {
	if err := creds.Validate(); err != nil {
		return nil, nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username:     creds.Username,
		PasswordHash: string(passwordHash),
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		s.auditor.Record(ctx, audit.ActionRegister, "user", user.Username, nil)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(user.Username)
	if err != nil {
		return nil, nil, err
	}

	logger.Info(ctx, "user registered", "username", user.Username)

	return &Account{Username: user.Username}, tokens, nil
}

// Login verifies credentials and issues session tokens. Unknown usernames
// and wrong passwords produce the identical error.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Account, *TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, creds.Username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized(credentialsIncorrect)
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, nil, apperror.NewUnauthorized(credentialsIncorrect)
	}

	tokens, err := s.issueTokens(user.Username)
	if err != nil {
		return nil, nil, err
	}

	logger.Info(ctx, "user logged in", "username", user.Username)

	return &Account{
		Username:   user.Username,
		ProfilePic: s.imageURL(user.ProfilePicID, user.ProfilePicVersion),
		BannerPic:  s.imageURL(user.BannerPicID, user.BannerPicVersion),
	}, tokens, nil
}

// Resolve turns presented tokens into an identity. With a valid access
// token the refresh token is not consulted. With an expired or invalid
// access token but a valid refresh token, a fresh access token is reissued
// and returned alongside the identity.
func (s *Service) Resolve(ctx context.Context, accessToken, refreshToken string) (*Identity, error) {
	if accessToken != "" {
		if username, err := s.jwtService.ValidateAccessToken(accessToken); err == nil {
			return &Identity{Username: username}, nil
		}
	}

	if refreshToken == "" {
		return nil, apperror.NewUnauthorized("authentication required")
	}

	username, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.NewUnauthorized("session expired")
	}

	reissued, _, err := s.jwtService.GenerateAccessToken(username)
	if err != nil {
		return nil, fmt.Errorf("reissue access token: %w", err)
	}

	logger.Debug(ctx, "access token reissued", "username", username)

	return &Identity{Username: username, ReissuedAccessToken: reissued}, nil
}

func (s *Service) issueTokens(username string) (*TokenPair, error) {
	access, expiresAt, err := s.jwtService.GenerateAccessToken(username)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, _, err := s.jwtService.GenerateRefreshToken(username)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
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
