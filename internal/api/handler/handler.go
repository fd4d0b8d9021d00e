package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/response"
)

// Services handler 依赖的业务服务
type Services struct {
	Feeds     service.FeedService
	Posts     service.PostService
	Relations service.RelationshipService
	Users     service.UserService
	Groups    service.GroupService
}

type Handler struct {
	feedService  service.FeedService
	postService  service.PostService
	relService   service.RelationshipService
	userService  service.UserService
	groupService service.GroupService

	tokens *auth.TokenManager
	gate   *auth.Gate
	cookie string
	now    func() time.Time
}

func NewHandler(svc Services, tokens *auth.TokenManager, gate *auth.Gate, cookie string) *Handler {
	return &Handler{
		feedService:  svc.Feeds,
		postService:  svc.Posts,
		relService:   svc.Relations,
		userService:  svc.Users,
		groupService: svc.Groups,
		tokens:       tokens,
		gate:         gate,
		cookie:       cookie,
		now:          time.Now,
	}
}

func (h *Handler) year() int { return h.now().Year() }

func identity(c *gin.Context) auth.Identity { return middleware.CurrentIdentity(c) }

// here 当前请求地址，作为登录后的 next
func here(c *gin.Context) string { return c.Request.URL.RequestURI() }

func postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func redirect(c *gin.Context, out *service.Outcome) {
	response.Redirect(c, out.Redirect)
}

// fail 按错误类型选择响应
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, "")
	case errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrSlugTaken),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, auth.ErrWeakPassword):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
