package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/pkg/database"
	"github.com/d60-Lab/yatube/pkg/logger"
)

func main() {
	users := flag.Int("users", 20, "number of users")
	groups := flag.Int("groups", 5, "number of groups")
	posts := flag.Int("posts", 200, "number of posts")
	follows := flag.Int("follows", 5, "follows per user")
	password := flag.String("password", "password123", "password for every seeded user")
	staff := flag.Int("staff", 1, "number of seeded users marked as staff")
	flag.Parse()

	if err := run(*users, *groups, *posts, *follows, *staff, *password); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(nUsers, nGroups, nPosts, nFollows, nStaff int, password string) error {
	if nUsers < 1 {
		return errors.New("need at least one user")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.InitDB(cfg, model.Migrate)
	if err != nil {
		return err
	}
	defer database.Close(db)
	ctx := context.Background()

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	userRows := make([]model.User, nUsers)
	for i := range userRows {
		userRows[i] = model.User{
			Username:  fmt.Sprintf("user%03d", i),
			Email:     fmt.Sprintf("user%03d@example.com", i),
			FirstName: "User",
			LastName:  fmt.Sprint(i),
			Password:  hash,
			IsStaff:   i < nStaff,
		}
	}
	groupRows := make([]model.Group, nGroups)
	for i := range groupRows {
		desc := fmt.Sprintf("Seeded group number %d", i)
		groupRows[i] = model.Group{Title: fmt.Sprintf("Group %d", i), Slug: fmt.Sprintf("group-%d", i), Description: &desc}
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&userRows, 500).Error; err != nil {
			return err
		}
		if len(groupRows) > 0 {
			if err := tx.CreateInBatches(&groupRows, 500).Error; err != nil {
				return err
			}
		}

		base := time.Now().UTC().Add(-time.Duration(nPosts) * time.Minute)
		postRows := make([]model.Post, nPosts)
		for i := range postRows {
			p := model.Post{
				Text:      fmt.Sprintf("Seeded post %d", i),
				AuthorID:  userRows[rnd.Intn(nUsers)].ID,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}
			if nGroups > 0 && rnd.Intn(3) > 0 {
				p.GroupID = &groupRows[rnd.Intn(nGroups)].ID
			}
			postRows[i] = p
		}
		if len(postRows) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(&postRows, 500).Error; err != nil {
				return err
			}
		}

		var followRows []model.Follow
		for _, u := range userRows {
			for j := 0; j < nFollows && j < nUsers-1; j++ {
				a := userRows[rnd.Intn(nUsers)]
				if a.ID == u.ID {
					continue
				}
				followRows = append(followRows, model.Follow{FollowerID: u.ID, AuthorID: a.ID})
			}
		}
		if len(followRows) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&followRows, 500).Error
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	logger.Info("seed done",
		zap.Int("users", nUsers),
		zap.Int("groups", nGroups),
		zap.Int("posts", nPosts),
		zap.Int("staff", nStaff),
		zap.String("password", password),
	)
	return nil
}
