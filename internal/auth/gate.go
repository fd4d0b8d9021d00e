package auth

import (
	"fmt"
	"net/url"

	"github.com/d60-Lab/yatube/internal/model"
)

// Action is a guarded operation.
type Action string

const (
	ActionCreatePost    Action = "create-post"
	ActionEditPost      Action = "edit-post"
	ActionCreateComment Action = "create-comment"
	ActionFollow        Action = "follow"
	ActionUnfollow      Action = "unfollow"
	ActionViewFollowed  Action = "view-followed-feed"
	ActionManageGroups  Action = "manage-groups"
	ActionClearCache    Action = "clear-cache"
	ActionChangePass    Action = "change-password"
)

// staffOnly 仅 staff 可执行的操作
var staffOnly = map[Action]bool{
	ActionManageGroups: true,
	ActionClearCache:   true,
}

// StaffOnly reports whether action is reserved for staff accounts.
func (a Action) StaffOnly() bool { return staffOnly[a] }

// DenyReason says why a Decision was negative.
type DenyReason int

const (
	Allowed DenyReason = iota
	DenyUnauthenticated
	DenyNotAuthor
	DenyNotStaff
)

// Decision is never an error: a denied action carries the location the
// caller should be sent to instead.
type Decision struct {
	Allowed  bool
	Reason   DenyReason
	Redirect string
}

// Gate decides whether an identity may perform a mutating action.
type Gate struct {
	loginURL string
}

func NewGate(loginURL string) *Gate {
	if loginURL == "" {
		loginURL = "/auth/login/"
	}
	return &Gate{loginURL: loginURL}
}

// LoginURL is the login entry point with next set to the original location.
func (g *Gate) LoginURL(next string) string {
	if next == "" {
		return g.loginURL
	}
	return g.loginURL + "?next=" + url.QueryEscape(next)
}

// Check requires an authenticated identity for action, and a staff one for
// staff-only actions. next is where the login page should send the user
// afterwards.
func (g *Gate) Check(actor Identity, action Action, next string) Decision {
	if !actor.IsAuthenticated() {
		return Decision{Reason: DenyUnauthenticated, Redirect: g.LoginURL(next)}
	}
	if action.StaffOnly() && !actor.IsStaff() {
		// 与后台一致：非 staff 回到登录页换账号
		return Decision{Reason: DenyNotStaff, Redirect: g.LoginURL(next)}
	}
	return Decision{Allowed: true}
}

// CheckEdit allows only the post's author; anyone else is sent to the
// read-only detail view.
func (g *Gate) CheckEdit(actor Identity, post *model.Post, next string) Decision {
	if d := g.Check(actor, ActionEditPost, next); !d.Allowed {
		return d
	}
	if !actor.Is(post.AuthorID) {
		return Decision{Reason: DenyNotAuthor, Redirect: PostDetailPath(post.ID)}
	}
	return Decision{Allowed: true}
}

// PostDetailPath is the read-only view of a post.
func PostDetailPath(postID uint) string {
	return fmt.Sprintf("/api/v1/posts/%d", postID)
}

// ProfilePath is the author feed of username.
func ProfilePath(username string) string {
	return "/api/v1/profile/" + url.PathEscape(username)
}
