package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate 初始化表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Group{},
		&Post{},
		&Comment{},
		&Follow{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
