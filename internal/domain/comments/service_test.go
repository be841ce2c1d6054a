package comments

import (
	"context"
	"strings"
	"testing"
	"time"

	"artfolio/internal/core/apperror"
)

type fakeRepo struct {
	nextID   int64
	posts    map[string]bool
	inserted []*Comment
	deletes  []int64
}

func newFakeRepo(posts ...string) *fakeRepo {
	r := &fakeRepo{nextID: 1, posts: map[string]bool{}}
	for _, p := range posts {
		r.posts[p] = true
	}
	return r
}

func (r *fakeRepo) Insert(ctx context.Context, postID, username, content string) (*Comment, error) {
	if !r.posts[postID] {
		return nil, apperror.NewNotFound("post", postID)
	}
	c := &Comment{
		ID:        r.nextID,
		PostID:    postID,
		Username:  username,
		Content:   content,
		CreatedAt: time.Now(),
	}
	r.nextID++
	r.inserted = append(r.inserted, c)
	return c, nil
}

func (r *fakeRepo) DeleteByAuthor(ctx context.Context, commentID int64, username string) error {
	r.deletes = append(r.deletes, commentID)
	return nil
}

func (r *fakeRepo) ListForPost(ctx context.Context, postID string) ([]AuthorComment, error) {
	return nil, nil
}

type fakeLocker struct {
	locked []string
}

func (l *fakeLocker) LockUser(ctx context.Context, username string) error {
	l.locked = append(l.locked, username)
	return nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestAdd_ReturnsServerAssignedFields(t *testing.T) {
	repo := newFakeRepo("post-1")
	locker := &fakeLocker{}
	svc := NewService(repo, locker, passthroughTx{}, nil)

	comment, err := svc.Add(context.Background(), "alice", "post-1", "lovely colors")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comment.ID == 0 || comment.CreatedAt.IsZero() {
		t.Errorf("id and timestamp must be assigned: %+v", comment)
	}
	if len(locker.locked) != 1 || locker.locked[0] != "alice" {
		t.Errorf("acting user must be locked first, got %v", locker.locked)
	}
}

func TestAdd_MissingPostIsNotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeLocker{}, passthroughTx{}, nil)

	_, err := svc.Add(context.Background(), "alice", "gone", "lovely colors")
	if !apperror.IsNotFound(err) {
		t.Fatalf("missing post must surface as not-found, got %v", err)
	}
}

func TestAdd_ValidatesContent(t *testing.T) {
	repo := newFakeRepo("post-1")
	svc := NewService(repo, &fakeLocker{}, passthroughTx{}, nil)

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"too long", strings.Repeat("a", 5001)},
		{"no real word", "a b cc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), "alice", "post-1", tt.content)
			appErr, ok := apperror.AsAppError(err)
			if !ok || appErr.Code != apperror.CodeValidation {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}
	if len(repo.inserted) != 0 {
		t.Error("invalid content must never reach storage")
	}
}

func TestRemove_ForeignCommentSucceedsSilently(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeLocker{}, passthroughTx{}, nil)

	if err := svc.Remove(context.Background(), "alice", 99); err != nil {
		t.Fatalf("removing a comment not owned must succeed, got %v", err)
	}
	if len(repo.deletes) != 1 {
		t.Error("delete must be attempted exactly once")
	}
}

func TestValidateContent_AcceptsNormalComment(t *testing.T) {
	if err := ValidateContent("this is fine"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateContent(strings.Repeat("a", 5000)); err != nil {
		t.Fatalf("5000 characters is within bounds: %v", err)
	}
}
