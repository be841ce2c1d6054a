package followings

import (
	"context"
	"testing"

	"artfolio/internal/core/apperror"
	"artfolio/internal/domain/page"
)

type fakeRepo struct {
	pairs   map[string]bool
	inserts int
	deletes int
	list    []FollowedUser
	total   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{pairs: map[string]bool{}}
}

func (r *fakeRepo) Insert(ctx context.Context, follower, followed string) error {
	r.inserts++
	r.pairs[follower+"/"+followed] = true
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, follower, followed string) error {
	r.deletes++
	delete(r.pairs, follower+"/"+followed)
	return nil
}

func (r *fakeRepo) ListFollowing(ctx context.Context, follower string, limit, offset int) ([]FollowedUser, int, error) {
	return r.list, r.total, nil
}

type fakeLocker struct {
	known map[string]bool
}

func (l *fakeLocker) LockUsers(ctx context.Context, usernames ...string) (int, error) {
	n := 0
	for _, u := range usernames {
		if l.known[u] {
			n++
		}
	}
	return n, nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(repo *fakeRepo, locker *fakeLocker) *Service {
	return NewService(repo, locker, passthroughTx{}, nil, nil)
}

func mustPage(t *testing.T, pageNo, limit int) page.Request {
	t.Helper()
	req, err := page.NewRequest(pageNo, limit)
	if err != nil {
		t.Fatalf("page request: %v", err)
	}
	return req
}

func TestFollow_SelfFollowRejectedBeforeStorage(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{known: map[string]bool{"alice": true}})

	err := svc.Follow(context.Background(), "alice", "alice")
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeValidation {
		t.Fatalf("want validation error, got %v", err)
	}
	if repo.inserts != 0 {
		t.Error("self-follow must be rejected before any storage work")
	}
}

func TestFollow_UnknownFollowedUser(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{known: map[string]bool{"alice": true}})

	err := svc.Follow(context.Background(), "alice", "ghost")
	if !apperror.IsNotFound(err) {
		t.Fatalf("want not-found, got %v", err)
	}
	if repo.inserts != 0 {
		t.Error("insert must not run when the followed user is missing")
	}
}

func TestFollow_Succeeds(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{known: map[string]bool{"alice": true, "bob": true}})

	if err := svc.Follow(context.Background(), "alice", "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.pairs["alice/bob"] {
		t.Error("pair was not recorded")
	}
}

func TestFollow_RepeatIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{known: map[string]bool{"alice": true, "bob": true}})

	for i := 0; i < 2; i++ {
		if err := svc.Follow(context.Background(), "alice", "bob"); err != nil {
			t.Fatalf("follow %d failed: %v", i+1, err)
		}
	}
	if len(repo.pairs) != 1 {
		t.Errorf("want one pair, got %d", len(repo.pairs))
	}
}

func TestUnfollow_AbsentPairSucceeds(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{known: map[string]bool{"alice": true}})

	if err := svc.Unfollow(context.Background(), "alice", "bob"); err != nil {
		t.Fatalf("unfollow of absent pair must succeed, got %v", err)
	}
	if repo.deletes != 1 {
		t.Error("delete must still be attempted")
	}
}

func TestList_PagesResults(t *testing.T) {
	repo := newFakeRepo()
	repo.list = []FollowedUser{{Username: "bob"}, {Username: "carol"}}
	repo.total = 25
	svc := newTestService(repo, &fakeLocker{})

	result, err := svc.List(context.Background(), "alice", mustPage(t, 2, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 2 {
		t.Errorf("want 2 items, got %d", len(result.Items))
	}
	if result.TotalPages != 3 {
		t.Errorf("want 3 pages for 25 rows at 10 per page, got %d", result.TotalPages)
	}
}
