package auth

import (
	"context"

	"github.com/d60-Lab/yatube/internal/model"
)

// Identity is the acting user for a request. The zero value is the
// anonymous sentinel.
type Identity struct {
	UserID   uint
	Username string
	Staff    bool
}

// Anonymous is the identity of an unauthenticated request.
var Anonymous = Identity{}

func (i Identity) IsAuthenticated() bool { return i.UserID != 0 }

// Is reports whether the identity is the given user.
func (i Identity) Is(userID uint) bool { return i.IsAuthenticated() && i.UserID == userID }

func (i Identity) IsStaff() bool { return i.IsAuthenticated() && i.Staff }

func FromUser(u *model.User) Identity {
	if u == nil {
		return Anonymous
	}
	return Identity{UserID: u.ID, Username: u.Username, Staff: u.IsStaff}
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns Anonymous when no identity was attached.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}
