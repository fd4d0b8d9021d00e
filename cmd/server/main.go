package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/api"
	"github.com/d60-Lab/yatube/internal/api/handler"
	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/media"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/pagecache"
	"github.com/d60-Lab/yatube/internal/query"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/database"
	"github.com/d60-Lab/yatube/pkg/logger"
	"github.com/d60-Lab/yatube/pkg/tracing"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	defer logger.Sync()
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := database.InitDB(cfg, model.Migrate)
	if err != nil {
		return err
	}
	defer database.Close(db)

	cache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	posts := repository.NewPostRepository(db)
	groups := repository.NewGroupRepository(db)
	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	comments := repository.NewCommentRepository(db)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	gate := auth.NewGate(cfg.Server.LoginURL)
	svc := handler.Services{
		Feeds:     service.NewFeedService(query.NewComposer(posts, groups, users), follows, cache, cfg.Feed.PageSize),
		Posts:     service.NewPostService(posts, groups, comments, media.NewStorage(cfg.Server.MediaDir), gate),
		Relations: service.NewRelationshipService(follows, users, gate, cfg.Feed.PageSize),
		Users:     service.NewUserService(users, tokens),
		Groups:    service.NewGroupService(groups),
	}

	router, err := api.NewRouter(api.Options{
		Handler:     handler.NewHandler(svc, tokens, gate, cfg.JWT.Cookie),
		Tokens:      tokens,
		Gate:        gate,
		Cookie:      cfg.JWT.Cookie,
		Limiter:     middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		MediaDir:    cfg.Server.MediaDir,
		ServiceName: cfg.Tracing.ServiceName,
		Sentry:      cfg.Sentry.DSN != "",
		Tracing:     cfg.Tracing.Enabled,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: cfg.Addr(), Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr), zap.String("cache", cfg.Feed.CacheBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newCache(ctx context.Context, cfg *config.Config) (pagecache.Cache, func(), error) {
	if cfg.Feed.CacheBackend != "redis" {
		return pagecache.NewMemoryCache(cfg.Feed.CacheTTL), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
	}
	return pagecache.NewRedisCache(client, cfg.Feed.CachePrefix, cfg.Feed.CacheTTL), func() { client.Close() }, nil
}
