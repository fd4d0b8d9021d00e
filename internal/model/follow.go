package model

import (
	"time"
)

// Follow 关注关系（Follower 关注 Author）
type Follow struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	FollowerID uint `json:"follower_id" gorm:"not null;index:idx_follow_follower;uniqueIndex:idx_follow_pair"`
	AuthorID   uint `json:"author_id" gorm:"not null;index:idx_follow_author;uniqueIndex:idx_follow_pair"`
	// 复合唯一键，避免重复关注
	// idx_follow_pair = (follower_id, author_id)
	Follower  User `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Author    User `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt time.Time
}

func (Follow) TableName() string { return "follows" }
