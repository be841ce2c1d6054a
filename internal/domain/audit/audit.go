// Package audit defines the contract for recording mutating operations.
package audit

import (
	"context"
)

// Action identifies the audited operation kind.
type Action string

const (
	ActionRegister     Action = "register"
	ActionUploadPost   Action = "upload_post"
	ActionDeletePost   Action = "delete_post"
	ActionFollow       Action = "follow"
	ActionUnfollow     Action = "unfollow"
	ActionFavorite     Action = "favorite"
	ActionUnfavorite   Action = "unfavorite"
	ActionComment      Action = "comment"
	ActionUncomment    Action = "uncomment"
	ActionEditProfile  Action = "edit_profile"
)

// Recorder persists audit entries. When called inside an open transaction
// the entry commits or rolls back with the business write.
//
// Recording is best-effort: implementations log failures instead of
// propagating them, so audit problems never fail a user request.
type Recorder interface {
	Record(ctx context.Context, action Action, entity string, entityID string, payload any)
}

// Noop discards all entries. Useful in tests and tooling.
type Noop struct{}

// Record implements Recorder.
func (Noop) Record(context.Context, Action, string, string, any) {}
