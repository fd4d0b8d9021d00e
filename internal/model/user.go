package model

import (
	"strings"
	"time"
)

// User 作者/读者账号
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email     string    `json:"email,omitempty" gorm:"type:varchar(254)"`
	FirstName string    `json:"first_name,omitempty" gorm:"type:varchar(150)"`
	LastName  string    `json:"last_name,omitempty" gorm:"type:varchar(150)"`
	Password  string    `json:"-" gorm:"type:varchar(128);not null"` // bcrypt hash
	// IsStaff 可管理 group 与首页缓存
	IsStaff   bool      `json:"is_staff" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

// FullName 姓名，未填写时回退到用户名
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
