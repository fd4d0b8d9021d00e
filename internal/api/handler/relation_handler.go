package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/pkg/response"
)

// Follow 关注作者
// @Summary 关注作者（幂等）
// @Tags 关系链
// @Produce json
// @Param username path string true "作者用户名"
// @Success 302 {string} string "跳转作者主页"
// @Failure 404 {object} response.Response
// @Router /api/v1/profile/{username}/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	out, err := h.relService.Follow(c.Request.Context(), identity(c), c.Param("username"), here(c))
	if err != nil {
		fail(c, err)
		return
	}
	redirect(c, out)
}

// Unfollow 取消关注
// @Summary 取消关注（幂等）
// @Tags 关系链
// @Produce json
// @Param username path string true "作者用户名"
// @Success 302 {string} string "跳转作者主页"
// @Failure 404 {object} response.Response
// @Router /api/v1/profile/{username}/unfollow [post]
func (h *Handler) Unfollow(c *gin.Context) {
	out, err := h.relService.Unfollow(c.Request.Context(), identity(c), c.Param("username"), here(c))
	if err != nil {
		fail(c, err)
		return
	}
	redirect(c, out)
}

// ListFollowing 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 404 {object} response.Response
// @Router /api/v1/relations/{username}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	page, err := h.relService.ListFollowing(c.Request.Context(), c.Param("username"), c.Query("page"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Page(c, h.year(), page)
}

// ListFans 查询某用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关系链
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 404 {object} response.Response
// @Router /api/v1/relations/{username}/fans [get]
func (h *Handler) ListFans(c *gin.Context) {
	page, err := h.relService.ListFans(c.Request.Context(), c.Param("username"), c.Query("page"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Page(c, h.year(), page)
}
