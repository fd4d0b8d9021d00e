package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/yatube/internal/model"
)

// PostFilter 列表过滤条件；全部为空表示所有帖子
type PostFilter struct {
	GroupID    *uint
	AuthorID   *uint
	FollowerID *uint // 该用户关注的作者发布的帖子
}

// PostSet 按 created_at DESC, id DESC 排序的惰性帖子序列
type PostSet interface {
	Count(ctx context.Context) (int, error)
	Slice(ctx context.Context, offset, limit int) ([]model.Post, error)
	All(ctx context.Context) ([]model.Post, error)
}

type PostRepository interface {
	Create(ctx context.Context, p *model.Post) error
	GetByID(ctx context.Context, id uint) (*model.Post, error)
	Update(ctx context.Context, p *model.Post) error
	Delete(ctx context.Context, id uint) error
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	Find(filter PostFilter) PostSet
	// Transaction 在同一事务内执行 fn，fn 收到绑定事务的仓储
	Transaction(ctx context.Context, fn func(repo PostRepository) error) error
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Preload("Author").Preload("Group").First(&p, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Update 只更新可编辑字段：text、group_id、image
func (r *postRepository) Update(ctx context.Context, p *model.Post) error {
	res := r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", p.ID).Updates(map[string]any{
		"text":     p.Text,
		"group_id": p.GroupID,
		"image":    p.Image,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除帖子并级联删除评论
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Where("author_id = ?", authorID).Count(&cnt).Error
	return cnt, err
}

func (r *postRepository) Find(filter PostFilter) PostSet {
	return &postSet{db: r.db, filter: filter}
}

func (r *postRepository) Transaction(ctx context.Context, fn func(repo PostRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&postRepository{db: tx})
	})
}

type postSet struct {
	db     *gorm.DB
	filter PostFilter
}

// scope 每次构造新的查询，避免复用已执行的 *gorm.DB
func (s *postSet) scope(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&model.Post{})
	if s.filter.GroupID != nil {
		q = q.Where("posts.group_id = ?", *s.filter.GroupID)
	}
	if s.filter.AuthorID != nil {
		q = q.Where("posts.author_id = ?", *s.filter.AuthorID)
	}
	if s.filter.FollowerID != nil {
		followed := s.db.WithContext(ctx).Model(&model.Follow{}).
			Select("author_id").
			Where("follower_id = ?", *s.filter.FollowerID)
		q = q.Where("posts.author_id IN (?)", followed)
	}
	return q
}

func (s *postSet) Count(ctx context.Context) (int, error) {
	var cnt int64
	if err := s.scope(ctx).Count(&cnt).Error; err != nil {
		return 0, err
	}
	return int(cnt), nil
}

func (s *postSet) Slice(ctx context.Context, offset, limit int) ([]model.Post, error) {
	var res []model.Post
	err := s.scope(ctx).
		Preload("Author").
		Preload("Group").
		Order("posts.created_at DESC, posts.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (s *postSet) All(ctx context.Context) ([]model.Post, error) {
	var res []model.Post
	err := s.scope(ctx).
		Preload("Author").
		Preload("Group").
		Order("posts.created_at DESC, posts.id DESC").
		Find(&res).Error
	return res, err
}
