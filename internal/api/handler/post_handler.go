package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/media"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/response"
)

type postRequest struct {
	Text  string `form:"text" json:"text" binding:"required"`
	Group *uint  `form:"group" json:"group"`
}

type commentRequest struct {
	Text string `form:"text" json:"text"`
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// bindPost 图片为可选的 multipart 字段 image
func bindPost(c *gin.Context) (service.PostForm, func(), error) {
	var req postRequest
	if err := c.ShouldBind(&req); err != nil {
		return service.PostForm{}, nil, err
	}
	form := service.PostForm{Text: req.Text}
	if req.Group != nil && *req.Group != 0 {
		form.GroupID = req.Group
	}

	fh, err := c.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return form, func() {}, nil
		}
		return service.PostForm{}, nil, err
	}
	up, closeFn, err := openUpload(fh)
	if err != nil {
		return service.PostForm{}, nil, err
	}
	form.Image = up
	return form, closeFn, nil
}

func openUpload(fh *multipart.FileHeader) (*media.Upload, func(), error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExts[ext] {
		return nil, nil, fmt.Errorf("unsupported image type %q", ext)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &media.Upload{Filename: fh.Filename, Body: f}, func() { f.Close() }, nil
}

// PostDetail 帖子详情
// @Summary 帖子详情（含评论与作者发帖数）
// @Tags 帖子
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response{data=service.PostDetail}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) PostDetail(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		response.NotFound(c, "")
		return
	}
	detail, err := h.postService.Detail(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Page(c, h.year(), detail)
}

// CreatePost 发帖
// @Summary 发布帖子
// @Tags 帖子
// @Accept json,mpfd
// @Produce json
// @Param request body postRequest true "帖子内容"
// @Success 302 {string} string "跳转作者主页"
// @Failure 400 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	form, closeFn, err := bindPost(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	defer closeFn()

	out, err := h.postService.Create(c.Request.Context(), identity(c), form, here(c))
	if err != nil {
		fail(c, err)
		return
	}
	redirect(c, out)
}

// EditForm 编辑页，仅作者可见
// @Summary 获取待编辑帖子
// @Tags 帖子
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 302 {string} string "非作者跳转详情页"
// @Router /api/v1/posts/{id}/edit [get]
func (h *Handler) EditForm(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		response.NotFound(c, "")
		return
	}
	post, err := h.postService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if d := h.gate.CheckEdit(identity(c), post, here(c)); !d.Allowed {
		response.Redirect(c, d.Redirect)
		return
	}
	response.Page(c, h.year(), post)
}

// EditPost 编辑帖子
// @Summary 编辑帖子（仅作者）
// @Tags 帖子
// @Accept json,mpfd
// @Produce json
// @Param id path int true "帖子ID"
// @Param request body postRequest true "帖子内容"
// @Success 302 {string} string "跳转详情页"
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/edit [post]
func (h *Handler) EditPost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		response.NotFound(c, "")
		return
	}
	// 非作者先跳走，不校验表单
	post, err := h.postService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if d := h.gate.CheckEdit(identity(c), post, here(c)); !d.Allowed {
		response.Redirect(c, d.Redirect)
		return
	}

	form, closeFn, err := bindPost(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	defer closeFn()

	out, err := h.postService.Edit(c.Request.Context(), identity(c), id, form, here(c))
	if err != nil {
		fail(c, err)
		return
	}
	redirect(c, out)
}

// AddComment 评论
// @Summary 发表评论
// @Tags 帖子
// @Accept json
// @Produce json
// @Param id path int true "帖子ID"
// @Param request body commentRequest true "评论内容"
// @Success 302 {string} string "跳转详情页"
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/comment [post]
func (h *Handler) AddComment(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		response.NotFound(c, "")
		return
	}
	var req commentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	out, err := h.postService.AddComment(c.Request.Context(), identity(c), id, req.Text, here(c))
	if err != nil {
		fail(c, err)
		return
	}
	redirect(c, out)
}
