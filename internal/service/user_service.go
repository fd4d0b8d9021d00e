package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/pkg/logger"
)

// SignUpForm 注册表单
type SignUpForm struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

type UserService interface {
	SignUp(ctx context.Context, form SignUpForm) (*model.User, error)
	// Login 返回用户与会话令牌
	Login(ctx context.Context, username, password string) (*model.User, string, error)
	// ChangePassword 校验旧密码后更新；已签发的令牌不受影响
	ChangePassword(ctx context.Context, actor auth.Identity, oldPassword, newPassword string) error
}

type userService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
}

func NewUserService(users repository.UserRepository, tokens *auth.TokenManager) UserService {
	return &userService{users: users, tokens: tokens}
}

func (s *userService) SignUp(ctx context.Context, form SignUpForm) (*model.User, error) {
	username := strings.TrimSpace(form.Username)
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:  username,
		Email:     strings.TrimSpace(form.Email),
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
		Password:  hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	logger.Info("user signed up", zap.Uint("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := auth.CheckPassword(u.Password, password); err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Generate(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *userService) ChangePassword(ctx context.Context, actor auth.Identity, oldPassword, newPassword string) error {
	if !actor.IsAuthenticated() {
		return ErrInvalidCredentials
	}
	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if err := auth.CheckPassword(u.Password, oldPassword); err != nil {
		return ErrWrongPassword
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	logger.Info("password changed", zap.Uint("user_id", u.ID))
	return nil
}
