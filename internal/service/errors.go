package service

import (
	"errors"

	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/repository"
)

var (
	// ErrNotFound 请求的 group/author/post 不存在
	ErrNotFound = repository.ErrNotFound

	ErrFollowSelf         = errors.New("cannot follow self")
	ErrGroupNotFound      = errors.New("selected group does not exist")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrSlugTaken          = errors.New("slug already taken")
	ErrInvalidCredentials = auth.ErrInvalidCredentials
	ErrWrongPassword      = errors.New("old password is incorrect")
)

// Outcome 变更类操作的结果：Performed 表示是否落库，Redirect 为后续跳转地址。
// 未登录、无权限都通过 Redirect 本地恢复，不作为 error 返回。
type Outcome struct {
	Performed bool   `json:"performed"`
	Redirect  string `json:"redirect"`
}

func redirectTo(d auth.Decision) *Outcome {
	return &Outcome{Redirect: d.Redirect}
}
