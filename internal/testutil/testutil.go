// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/yatube/internal/model"
)

// OpenDB opens a migrated SQLite database in a per-test temp dir.
func OpenDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := filepath.Join(tb.TempDir(), "test.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(tb, err)
	sqlDB, err := db.DB()
	require.NoError(tb, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(tb, model.Migrate(db))
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func User(tb testing.TB, db *gorm.DB, username string) *model.User {
	tb.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(tb, db.Create(u).Error)
	return u
}

// Staff inserts a user allowed to manage groups and the index cache.
func Staff(tb testing.TB, db *gorm.DB, username string) *model.User {
	tb.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", Password: "x", IsStaff: true}
	require.NoError(tb, db.Create(u).Error)
	return u
}

func Group(tb testing.TB, db *gorm.DB, slug string) *model.Group {
	tb.Helper()
	g := &model.Group{Title: "Group " + slug, Slug: slug}
	require.NoError(tb, db.Create(g).Error)
	return g
}

// Post inserts a post; a zero at means now.
func Post(tb testing.TB, db *gorm.DB, author *model.User, group *model.Group, at time.Time, text string) *model.Post {
	tb.Helper()
	p := &model.Post{Text: text, AuthorID: author.ID}
	if !at.IsZero() {
		p.CreatedAt = at.UTC()
	}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(tb, db.Omit(clause.Associations).Create(p).Error)
	return p
}

func Follow(tb testing.TB, db *gorm.DB, follower, author *model.User) {
	tb.Helper()
	require.NoError(tb, db.Omit(clause.Associations).Create(&model.Follow{FollowerID: follower.ID, AuthorID: author.ID}).Error)
}

// Texts lists post texts in order.
func Texts(posts []model.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Text
	}
	return out
}
