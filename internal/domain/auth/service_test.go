package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"artfolio/internal/core/apperror"
	"artfolio/internal/core/blob"
)

type fakeUserRepo struct {
	users     map[string]*User
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *User) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.users[user.Username]; exists {
		return apperror.NewDuplicate("user", "username")
	}
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, apperror.NewNotFound("user", username)
	}
	return user, nil
}

// passthroughTx runs the function directly; retry and commit semantics
// are covered by the transaction manager's own tests.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeBlobs struct{}

func (fakeBlobs) Upload(ctx context.Context, r io.Reader, key string, overwrite bool) (*blob.Object, error) {
	return &blob.Object{ID: key, Width: 100, Height: 100, Version: 1}, nil
}

func (fakeBlobs) Delete(ctx context.Context, id string) error { return nil }

func (fakeBlobs) URL(id string, version int64) string { return "https://cdn.test/" + id }

func newTestService(repo *fakeUserRepo) *Service {
	return NewService(repo, passthroughTx{}, testJWTService(), fakeBlobs{}, nil)
}

func TestRegister_CreatesUserAndIssuesTokens(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	account, tokens, err := svc.Register(context.Background(), Credentials{
		Username: "alice", Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Username != "alice" {
		t.Errorf("got account %q, want alice", account.Username)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("both tokens must be issued")
	}

	stored := repo.users["alice"]
	if stored == nil {
		t.Fatal("user row was not created")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")); err != nil {
		t.Error("stored hash does not match the password")
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	creds := Credentials{Username: "alice", Password: "correct horse"}
	if _, _, err := svc.Register(context.Background(), creds); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, _, err := svc.Register(context.Background(), creds)
	if !apperror.IsDuplicate(err) {
		t.Fatalf("want duplicate-entry error, got %v", err)
	}
}

func TestRegister_ValidatesCredentials(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	tests := []struct {
		name  string
		creds Credentials
	}{
		{"short username", Credentials{Username: "ab", Password: "long enough pw"}},
		{"bad characters", Credentials{Username: "al ice!", Password: "long enough pw"}},
		{"short password", Credentials{Username: "alice", Password: "short"}},
		{"overlong password", Credentials{Username: "alice", Password: string(make([]byte, 73))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tt.creds)
			appErr, ok := apperror.AsAppError(err)
			if !ok || appErr.Code != apperror.CodeValidation {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}
}

func TestLogin_UnknownUserAndWrongPasswordAreIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	if _, _, err := svc.Register(context.Background(), Credentials{Username: "alice", Password: "correct horse"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, errUnknown := svc.Login(context.Background(), Credentials{Username: "nobody", Password: "whatever pw"})
	_, _, errWrongPw := svc.Login(context.Background(), Credentials{Username: "alice", Password: "wrong password"})

	if !apperror.IsUnauthorized(errUnknown) || !apperror.IsUnauthorized(errWrongPw) {
		t.Fatalf("both failures must be unauthorized, got %v / %v", errUnknown, errWrongPw)
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("error text must not reveal which part was wrong:\n%v\n%v", errUnknown, errWrongPw)
	}
}

func TestLogin_Succeeds(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	if _, _, err := svc.Register(context.Background(), Credentials{Username: "alice", Password: "correct horse"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	account, tokens, err := svc.Login(context.Background(), Credentials{Username: "alice", Password: "correct horse"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Username != "alice" || tokens.AccessToken == "" {
		t.Errorf("incomplete login result: %+v %+v", account, tokens)
	}
}

func TestResolve_ValidAccessToken(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	access, _, err := testJWTService().GenerateAccessToken("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	identity, err := svc.Resolve(context.Background(), access, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.Username != "alice" || identity.ReissuedAccessToken != "" {
		t.Errorf("valid access token must resolve without reissue: %+v", identity)
	}
}

func TestResolve_ReissuesFromRefreshToken(t *testing.T) {
	// Access tokens from this service are already expired when issued.
	expiredCfg := DefaultJWTConfig("test-secret")
	expiredCfg.AccessTokenTTL = -time.Minute
	expiredJWT := NewJWTService(expiredCfg)

	svc := NewService(newFakeUserRepo(), passthroughTx{}, expiredJWT, fakeBlobs{}, nil)

	expiredAccess, _, err := expiredJWT.GenerateAccessToken("alice")
	if err != nil {
		t.Fatalf("generate access: %v", err)
	}
	refresh, _, err := expiredJWT.GenerateRefreshToken("alice")
	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}

	identity, err := svc.Resolve(context.Background(), expiredAccess, refresh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.Username != "alice" {
		t.Errorf("got username %q, want alice", identity.Username)
	}
	if identity.ReissuedAccessToken == "" {
		t.Error("expired access with valid refresh must reissue an access token")
	}
}

func TestResolve_NoTokens(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	_, err := svc.Resolve(context.Background(), "", "")
	if !apperror.IsUnauthorized(err) {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

func TestResolve_ExpiredRefreshToken(t *testing.T) {
	expiredCfg := DefaultJWTConfig("test-secret")
	expiredCfg.AccessTokenTTL = -time.Minute
	expiredCfg.RefreshTokenTTL = -time.Minute
	expiredJWT := NewJWTService(expiredCfg)

	svc := NewService(newFakeUserRepo(), passthroughTx{}, expiredJWT, fakeBlobs{}, nil)

	access, _, _ := expiredJWT.GenerateAccessToken("alice")
	refresh, _, _ := expiredJWT.GenerateRefreshToken("alice")

	_, err := svc.Resolve(context.Background(), access, refresh)
	if !apperror.IsUnauthorized(err) {
		t.Fatalf("want unauthorized for dead session, got %v", err)
	}
}
