package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/pkg/logger"
)

// GroupForm 创建 group 的表单
type GroupForm struct {
	Title       string
	Slug        string
	Description *string
}

type GroupService interface {
	Create(ctx context.Context, form GroupForm) (*model.Group, error)
	Get(ctx context.Context, slug string) (*model.Group, error)
	List(ctx context.Context) ([]*model.Group, error)
	// Delete 删除 group，其帖子保留且 group 置空
	Delete(ctx context.Context, slug string) error
}

type groupService struct {
	groups repository.GroupRepository
}

func NewGroupService(groups repository.GroupRepository) GroupService {
	return &groupService{groups: groups}
}

func (s *groupService) Create(ctx context.Context, form GroupForm) (*model.Group, error) {
	if _, err := s.groups.GetBySlug(ctx, form.Slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	g := &model.Group{Title: form.Title, Slug: form.Slug, Description: form.Description}
	if err := s.groups.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	logger.Info("group created", zap.Uint("group_id", g.ID), zap.String("slug", g.Slug))
	return g, nil
}

func (s *groupService) Get(ctx context.Context, slug string) (*model.Group, error) {
	g, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", slug, err)
	}
	return g, nil
}

func (s *groupService) List(ctx context.Context) ([]*model.Group, error) {
	return s.groups.List(ctx)
}

func (s *groupService) Delete(ctx context.Context, slug string) error {
	g, err := s.Get(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, g.ID); err != nil {
		return fmt.Errorf("delete group %q: %w", slug, err)
	}
	logger.Info("group deleted", zap.String("slug", slug))
	return nil
}
