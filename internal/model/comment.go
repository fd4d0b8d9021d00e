package model

import "time"

// Comment 评论，创建后不可修改
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	PostID    uint      `json:"post_id" gorm:"not null;index:idx_comment_post"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	Author    User      `json:"author" gorm:"constraint:OnDelete:CASCADE;"`
}

func (Comment) TableName() string { return "comments" }
