package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/d60-Lab/yatube/docs"
	"github.com/d60-Lab/yatube/internal/api/handler"
	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/pkg/response"
)

// Options 路由装配参数
type Options struct {
	Handler     *handler.Handler
	Tokens      *auth.TokenManager
	Gate        *auth.Gate
	Cookie      string
	Limiter     *middleware.RateLimiter
	MediaDir    string
	ServiceName string
	Sentry      bool
	Tracing     bool
}

func NewRouter(opts Options) (*gin.Engine, error) {
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if opts.Tracing {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(
		middleware.RequestID(),
		middleware.Identity(opts.Tokens, opts.Cookie),
		middleware.AccessLog(),
		middleware.Metrics(),
		gzip.Gzip(gzip.DefaultCompression),
	)

	r.GET("/healthz", func(c *gin.Context) { response.Success(c, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if opts.MediaDir != "" {
		// 不开放目录列表
		r.Static("/media", opts.MediaDir)
	}

	h := opts.Handler
	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if opts.Limiter != nil {
		limit = opts.Limiter.Middleware()
	}
	login := func(action auth.Action) gin.HandlerFunc {
		return middleware.LoginRequired(opts.Gate, action)
	}

	r.GET("/", h.Index)
	r.GET("/about/author/", h.AboutAuthor)
	r.GET("/about/tech/", h.AboutTech)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup/", limit, h.SignUp)
		authGroup.GET("/login/", h.LoginPage)
		authGroup.POST("/login/", limit, h.Login)
		authGroup.POST("/logout/", h.Logout)
		authGroup.POST("/password_change/", login(auth.ActionChangePass), limit, h.ChangePassword)
		authGroup.GET("/password_change/done/", login(auth.ActionChangePass), h.PasswordChangeDone)
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/posts", h.Index)
		v1.POST("/posts", login(auth.ActionCreatePost), limit, h.CreatePost)
		v1.GET("/posts/:id", h.PostDetail)
		v1.GET("/posts/:id/edit", login(auth.ActionEditPost), h.EditForm)
		v1.POST("/posts/:id/edit", login(auth.ActionEditPost), limit, h.EditPost)
		v1.POST("/posts/:id/comment", login(auth.ActionCreateComment), limit, h.AddComment)

		v1.GET("/follow", login(auth.ActionViewFollowed), h.FollowFeed)
		v1.POST("/feed/cache/clear", login(auth.ActionClearCache), h.ClearCache)

		v1.GET("/profile/:username", h.Profile)
		v1.POST("/profile/:username/follow", login(auth.ActionFollow), limit, h.Follow)
		v1.POST("/profile/:username/unfollow", login(auth.ActionUnfollow), limit, h.Unfollow)

		v1.GET("/relations/:username/following", h.ListFollowing)
		v1.GET("/relations/:username/fans", h.ListFans)

		v1.GET("/groups", h.ListGroups)
		v1.POST("/groups", login(auth.ActionManageGroups), limit, h.CreateGroup)
		v1.GET("/groups/:slug", h.GetGroup)
		v1.GET("/groups/:slug/posts", h.GroupPosts)
		v1.DELETE("/groups/:slug", login(auth.ActionManageGroups), h.DeleteGroup)
	}

	return r, nil
}
