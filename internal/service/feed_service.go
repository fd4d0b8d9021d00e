package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/metrics"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/pagecache"
	"github.com/d60-Lab/yatube/internal/pagination"
	"github.com/d60-Lab/yatube/internal/query"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/pkg/logger"
)

// FeedPage 列表页结果，交给渲染层
type FeedPage struct {
	Listing   string                       `json:"listing"`
	Page      *pagination.Page[model.Post] `json:"page"`
	Group     *model.Group                 `json:"group,omitempty"`
	Author    *model.User                  `json:"author,omitempty"`
	Following bool                         `json:"following"`
}

// FeedService 组装 Query Composer → (首页缓存) → Paginator
type FeedService interface {
	Assemble(ctx context.Context, listing query.Listing, rawPage string, viewer auth.Identity) (*FeedPage, error)
	ClearCache(ctx context.Context) error
}

type feedService struct {
	composer *query.Composer
	follows  repository.FollowRepository
	cache    pagecache.Cache
	pageSize int
}

// NewFeedService cache 为 nil 时首页也实时计算
func NewFeedService(composer *query.Composer, follows repository.FollowRepository, cache pagecache.Cache, pageSize int) FeedService {
	if pageSize < 1 {
		pageSize = 10
	}
	return &feedService{composer: composer, follows: follows, cache: cache, pageSize: pageSize}
}

func (s *feedService) Assemble(ctx context.Context, listing query.Listing, rawPage string, viewer auth.Identity) (*FeedPage, error) {
	res, err := s.composer.Compose(ctx, listing)
	if err != nil {
		return nil, err
	}

	var src pagination.Source[model.Post] = res.Posts
	// 只有全站列表走缓存，按列表身份缓存整份快照，与页码无关
	if listing.Kind == query.KindAll && s.cache != nil {
		snapshot, err := s.snapshot(ctx, listing.Key(), res.Posts)
		if err != nil {
			return nil, err
		}
		src = snapshot
	}

	page, err := pagination.Paginate(ctx, src, s.pageSize, rawPage)
	if err != nil {
		return nil, fmt.Errorf("paginate %s: %w", listing.Key(), err)
	}

	fp := &FeedPage{Listing: listing.Key(), Page: page, Group: res.Group, Author: res.Author}
	if res.Author != nil && viewer.IsAuthenticated() {
		fp.Following, err = s.follows.Exists(ctx, viewer.UserID, res.Author.ID)
		if err != nil {
			return nil, err
		}
	}
	return fp, nil
}

// snapshot 返回缓存的列表快照；未命中时查询全部并写入缓存
func (s *feedService) snapshot(ctx context.Context, key string, posts repository.PostSet) (pagination.SliceSource[model.Post], error) {
	data, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.PageCacheLookups.WithLabelValues("error").Inc()
		logger.Warn("page cache get failed, computing fresh", zap.String("key", key), zap.Error(err))
	case ok:
		var cached []model.Post
		if uErr := json.Unmarshal(data, &cached); uErr == nil {
			metrics.PageCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		}
		logger.Warn("page cache entry corrupt, recomputing", zap.String("key", key))
		metrics.PageCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.PageCacheLookups.WithLabelValues("miss").Inc()
	}

	fresh, err := posts.All(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(fresh)
	if err != nil {
		return nil, fmt.Errorf("encode feed snapshot: %w", err)
	}
	if err := s.cache.Set(ctx, key, payload); err != nil {
		logger.Warn("page cache set failed", zap.String("key", key), zap.Error(err))
	}
	// 从编码结果解码，保证命中与未命中走同一份数据
	var out []model.Post
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode feed snapshot: %w", err)
	}
	logger.Debug("page cache filled", zap.String("key", key), zap.Int("posts", len(out)))
	return out, nil
}

func (s *feedService) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear page cache: %w", err)
	}
	metrics.PageCacheClears.Inc()
	logger.Info("page cache cleared")
	return nil
}
