package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/yatube/internal/model"
)

func openTestDB(tb testing.TB) *gorm.DB {
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

func createUser(tb testing.TB, db *gorm.DB, username string) *model.User {
	tb.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", Password: "p"}
	require.NoError(tb, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func createGroup(tb testing.TB, db *gorm.DB, slug string) *model.Group {
	tb.Helper()
	g := &model.Group{Title: "Group " + slug, Slug: slug}
	require.NoError(tb, NewGroupRepository(db).Create(context.Background(), g))
	return g
}

func createPost(tb testing.TB, db *gorm.DB, author *model.User, group *model.Group, at time.Time, text string) *model.Post {
	tb.Helper()
	p := &model.Post{Text: text, AuthorID: author.ID, CreatedAt: at.UTC()}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(tb, NewPostRepository(db).Create(context.Background(), p))
	return p
}

func texts(posts []model.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Text
	}
	return out
}

func numbered(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}
