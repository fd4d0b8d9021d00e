package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/response"
)

type groupRequest struct {
	Title       string  `form:"title" json:"title" binding:"required,max=200"`
	Slug        string  `form:"slug" json:"slug" binding:"required,max=100,slug"`
	Description *string `form:"description" json:"description"`
}

// ListGroups
// @Summary group 列表
// @Tags group
// @Produce json
// @Success 200 {object} response.Response{data=[]model.Group}
// @Router /api/v1/groups [get]
func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.groupService.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Page(c, h.year(), groups)
}

// GetGroup
// @Summary group 详情
// @Tags group
// @Produce json
// @Param slug path string true "group slug"
// @Success 200 {object} response.Response{data=model.Group}
// @Failure 404 {object} response.Response
// @Router /api/v1/groups/{slug} [get]
func (h *Handler) GetGroup(c *gin.Context) {
	g, err := h.groupService.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Page(c, h.year(), g)
}

// CreateGroup 创建 group，需要登录
// @Summary 创建 group
// @Tags group
// @Accept json
// @Produce json
// @Param request body groupRequest true "group 信息"
// @Success 201 {object} response.Response{data=model.Group}
// @Failure 400 {object} response.Response
// @Router /api/v1/groups [post]
func (h *Handler) CreateGroup(c *gin.Context) {
	var req groupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	g, err := h.groupService.Create(c.Request.Context(), service.GroupForm{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, g)
}

// DeleteGroup 删除 group，帖子保留
// @Summary 删除 group
// @Tags group
// @Produce json
// @Param slug path string true "group slug"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/groups/{slug} [delete]
func (h *Handler) DeleteGroup(c *gin.Context) {
	if err := h.groupService.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
