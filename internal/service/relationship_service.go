package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/pagination"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/pkg/logger"
)

// RelationshipService 关注关系服务
type RelationshipService interface {
	Follow(ctx context.Context, actor auth.Identity, username, next string) (*Outcome, error)
	Unfollow(ctx context.Context, actor auth.Identity, username, next string) (*Outcome, error)
	ListFollowing(ctx context.Context, username, rawPage string) (*pagination.Page[model.User], error)
	ListFans(ctx context.Context, username, rawPage string) (*pagination.Page[model.User], error)
}

type relationshipService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	gate       *auth.Gate
	pageSize   int
}

func NewRelationshipService(followRepo repository.FollowRepository, userRepo repository.UserRepository, gate *auth.Gate, pageSize int) RelationshipService {
	if pageSize < 1 {
		pageSize = 10
	}
	return &relationshipService{followRepo: followRepo, userRepo: userRepo, gate: gate, pageSize: pageSize}
}

func (s *relationshipService) author(ctx context.Context, username string) (*model.User, error) {
	u, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("author %q: %w", username, err)
	}
	return u, nil
}

// Follow 幂等；关注自己时不写库，直接跳回主页
func (s *relationshipService) Follow(ctx context.Context, actor auth.Identity, username, next string) (*Outcome, error) {
	if d := s.gate.Check(actor, auth.ActionFollow, next); !d.Allowed {
		return redirectTo(d), nil
	}
	author, err := s.author(ctx, username)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Redirect: auth.ProfilePath(author.Username)}
	if actor.Is(author.ID) {
		logger.Debug("follow skipped", zap.Uint("user_id", actor.UserID), zap.Error(ErrFollowSelf))
		return out, nil
	}
	if err := s.followRepo.Create(ctx, actor.UserID, author.ID); err != nil {
		return nil, err
	}
	out.Performed = true
	return out, nil
}

// Unfollow 幂等；关系不存在时为空操作
func (s *relationshipService) Unfollow(ctx context.Context, actor auth.Identity, username, next string) (*Outcome, error) {
	if d := s.gate.Check(actor, auth.ActionUnfollow, next); !d.Allowed {
		return redirectTo(d), nil
	}
	author, err := s.author(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.followRepo.Delete(ctx, actor.UserID, author.ID); err != nil {
		return nil, err
	}
	return &Outcome{Performed: true, Redirect: auth.ProfilePath(author.Username)}, nil
}

func (s *relationshipService) ListFollowing(ctx context.Context, username, rawPage string) (*pagination.Page[model.User], error) {
	u, err := s.author(ctx, username)
	if err != nil {
		return nil, err
	}
	return pagination.Paginate[model.User](ctx, &followSource{repo: s.followRepo, userID: u.ID, following: true}, s.pageSize, rawPage)
}

func (s *relationshipService) ListFans(ctx context.Context, username, rawPage string) (*pagination.Page[model.User], error) {
	u, err := s.author(ctx, username)
	if err != nil {
		return nil, err
	}
	return pagination.Paginate[model.User](ctx, &followSource{repo: s.followRepo, userID: u.ID}, s.pageSize, rawPage)
}

// followSource 关注列表（following=true）或粉丝列表的分页数据源
type followSource struct {
	repo      repository.FollowRepository
	userID    uint
	following bool
}

func (f *followSource) Count(ctx context.Context) (int, error) {
	var (
		n   int64
		err error
	)
	if f.following {
		n, err = f.repo.CountFollowings(ctx, f.userID)
	} else {
		n, err = f.repo.CountFollowers(ctx, f.userID)
	}
	return int(n), err
}

func (f *followSource) Slice(ctx context.Context, offset, limit int) ([]model.User, error) {
	var (
		items []*model.Follow
		err   error
	)
	if f.following {
		items, err = f.repo.ListFollowings(ctx, f.userID, offset, limit)
	} else {
		items, err = f.repo.ListFollowers(ctx, f.userID, offset, limit)
	}
	if err != nil {
		return nil, err
	}
	res := make([]model.User, len(items))
	for i, it := range items {
		if f.following {
			res[i] = it.Author
		} else {
			res[i] = it.Follower
		}
	}
	return res, nil
}
