package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/query"
	"github.com/d60-Lab/yatube/pkg/response"
)

func (h *Handler) feed(c *gin.Context, l query.Listing) {
	fp, err := h.feedService.Assemble(c.Request.Context(), l, c.Query("page"), identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Page(c, h.year(), fp)
}

// Index 全站最新帖子
// @Summary 全站帖子列表（缓存）
// @Tags 帖子
// @Produce json
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=service.FeedPage}
// @Router /api/v1/posts [get]
func (h *Handler) Index(c *gin.Context) {
	h.feed(c, query.All())
}

// GroupPosts group 内帖子
// @Summary group 帖子列表
// @Tags 帖子
// @Produce json
// @Param slug path string true "group slug"
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=service.FeedPage}
// @Failure 404 {object} response.Response
// @Router /api/v1/groups/{slug}/posts [get]
func (h *Handler) GroupPosts(c *gin.Context) {
	h.feed(c, query.ByGroup(c.Param("slug")))
}

// Profile 作者主页
// @Summary 作者帖子列表
// @Tags 帖子
// @Produce json
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=service.FeedPage}
// @Failure 404 {object} response.Response
// @Router /api/v1/profile/{username} [get]
func (h *Handler) Profile(c *gin.Context) {
	h.feed(c, query.ByAuthor(c.Param("username")))
}

// FollowFeed 关注作者的帖子，需要登录
// @Summary 关注流
// @Tags 帖子
// @Produce json
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=service.FeedPage}
// @Failure 302 {string} string "跳转登录"
// @Router /api/v1/follow [get]
func (h *Handler) FollowFeed(c *gin.Context) {
	h.feed(c, query.ByFollowed(identity(c).UserID))
}

// ClearCache 清空首页缓存
// @Summary 清空首页缓存
// @Tags 运维
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/feed/cache/clear [post]
func (h *Handler) ClearCache(c *gin.Context) {
	if err := h.feedService.ClearCache(c.Request.Context()); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}
