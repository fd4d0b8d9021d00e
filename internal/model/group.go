package model

// Group 社区，被帖子引用（非拥有）
type Group struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"type:varchar(200);not null"`
	Slug        string  `json:"slug" gorm:"type:varchar(50);uniqueIndex;not null"`
	Description *string `json:"description,omitempty" gorm:"type:text"`
}

func (Group) TableName() string { return "groups" }
