package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/cacheperf"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/pagecache"
	"github.com/d60-Lab/yatube/internal/query"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/database"
)

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg, model.Migrate))
	defer database.Close(db)

	posts := envInt("POSTS", 2000)
	reqCount := envInt("REQUESTS", 3000)
	seed(db, posts)

	var counter cacheperf.QueryCounter
	mustDo(counter.Attach(db))

	postRepo := repository.NewPostRepository(db)
	composer := query.NewComposer(postRepo, repository.NewGroupRepository(db), repository.NewUserRepository(db))
	follows := repository.NewFollowRepository(db)

	caches := []struct {
		name  string
		cache pagecache.Cache
	}{
		{"No cache", nil},
		{"Memory cache", pagecache.NewMemoryCache(time.Hour)},
	}
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err))
		}
		rc := pagecache.NewRedisCache(client, cfg.Feed.CachePrefix+"bench:", time.Hour)
		mustDo(rc.Clear(ctx))
		caches = append(caches, struct {
			name  string
			cache pagecache.Cache
		}{"Redis cache", rc})
	}

	maxPage := (posts + cfg.Feed.PageSize - 1) / cfg.Feed.PageSize
	reqs := cacheperf.MakeRequests(reqCount, maxPage, 42)

	fmt.Printf("\nIndex feed latency (%d requests, %d posts, page size %d, %s)\n", reqCount, posts, cfg.Feed.PageSize, cfg.Database.Driver)
	for _, c := range caches {
		svc := service.NewFeedService(composer, follows, c.cache, cfg.Feed.PageSize)
		res := must(cacheperf.Run(ctx, c.name, &counter, reqs, c.cache != nil, func(ctx context.Context, r cacheperf.Request) error {
			_, err := svc.Assemble(ctx, query.All(), r.Page, auth.Anonymous)
			return err
		}))
		fmt.Println(res)
	}
}

// seed 帖子数不足时补齐
func seed(db *gorm.DB, n int) {
	var have int64
	mustDo(db.Model(&model.Post{}).Count(&have).Error)
	if int(have) >= n {
		return
	}
	author := model.User{Username: "feedbench", Email: "feedbench@example.com", Password: "x"}
	mustDo(db.Where(model.User{Username: author.Username}).FirstOrCreate(&author).Error)

	rows := make([]model.Post, 0, n-int(have))
	base := time.Now().UTC()
	for i := int(have); i < n; i++ {
		rows = append(rows, model.Post{
			Text:      fmt.Sprintf("bench post %d", i),
			AuthorID:  author.ID,
			CreatedAt: base.Add(-time.Duration(i) * time.Second),
		})
	}
	mustDo(db.Omit(clause.Associations).CreateInBatches(&rows, 1000).Error)
	fmt.Printf("Seeded %d posts\n", len(rows))
}
