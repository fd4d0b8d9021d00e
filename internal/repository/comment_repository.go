package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/yatube/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]*model.Comment, error)
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

// ListByPost 最新评论在前
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*model.Comment, error) {
	var res []*model.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&res).Error
	return res, err
}
