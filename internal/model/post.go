package model

import "time"

// Post 帖子；列表统一按 created_at DESC, id DESC 排序
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_post_created"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index:idx_post_author"`
	Author    User      `json:"author" gorm:"constraint:OnDelete:CASCADE;"`
	// 删除 group 时置空，不删除帖子
	GroupID  *uint     `json:"group_id,omitempty" gorm:"index:idx_post_group"`
	Group    *Group    `json:"group,omitempty" gorm:"constraint:OnDelete:SET NULL;"`
	Image    string    `json:"image,omitempty" gorm:"type:varchar(255)"`
	Comments []Comment `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
}

func (Post) TableName() string { return "posts" }

// Excerpt 前 15 个字符，用于日志
func (p Post) Excerpt() string {
	r := []rune(p.Text)
	if len(r) > 15 {
		return string(r[:15])
	}
	return p.Text
}
