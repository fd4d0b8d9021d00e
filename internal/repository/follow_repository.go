package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/yatube/internal/model"
)

type FollowRepository interface {
	Create(ctx context.Context, followerID, authorID uint) error
	Delete(ctx context.Context, followerID, authorID uint) error
	Exists(ctx context.Context, followerID, authorID uint) (bool, error)
	CountFollowings(ctx context.Context, followerID uint) (int64, error)
	CountFollowers(ctx context.Context, authorID uint) (int64, error)
	ListFollowings(ctx context.Context, followerID uint, offset, limit int) ([]*model.Follow, error)
	ListFollowers(ctx context.Context, authorID uint, offset, limit int) ([]*model.Follow, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Create(ctx context.Context, followerID, authorID uint) error {
	f := &model.Follow{FollowerID: followerID, AuthorID: authorID}
	// 幂等：重复关注不报错，依赖 idx_follow_pair 唯一键
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(f).Error
}

// Delete 幂等：关系不存在时不报错
func (r *followRepository) Delete(ctx context.Context, followerID, authorID uint) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&model.Follow{}).Error
}

func (r *followRepository) Exists(ctx context.Context, followerID, authorID uint) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) CountFollowings(ctx context.Context, followerID uint) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", followerID).Count(&cnt).Error
	return cnt, err
}

func (r *followRepository) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("author_id = ?", authorID).Count(&cnt).Error
	return cnt, err
}

func (r *followRepository) ListFollowings(ctx context.Context, followerID uint, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("follower_id = ?", followerID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *followRepository) ListFollowers(ctx context.Context, authorID uint, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).
		Preload("Follower").
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
