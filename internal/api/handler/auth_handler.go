package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/response"
)

type signUpRequest struct {
	FirstName string `form:"first_name" json:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" json:"last_name" binding:"max=150"`
	Username  string `form:"username" json:"username" binding:"required,max=150"`
	Email     string `form:"email" json:"email" binding:"omitempty,email"`
	Password  string `form:"password" json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
	Next     string `form:"next" json:"next"`
}

// passwordChangeRequest 新密码需输入两次
type passwordChangeRequest struct {
	OldPassword  string `form:"old_password" json:"old_password" binding:"required"`
	NewPassword1 string `form:"new_password1" json:"new_password1" binding:"required"`
	NewPassword2 string `form:"new_password2" json:"new_password2" binding:"required,eqfield=NewPassword1"`
}

// PasswordChangeDonePath 修改密码成功后的跳转地址
const PasswordChangeDonePath = "/auth/password_change/done/"

// safeNext 只允许站内相对路径
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}

// SignUp 注册
// @Summary 注册
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body signUpRequest true "注册信息"
// @Success 201 {object} response.Response{data=model.User}
// @Failure 400 {object} response.Response
// @Router /auth/signup/ [post]
func (h *Handler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userService.SignUp(c.Request.Context(), service.SignUpForm{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, u)
}

// LoginPage 登录入口，未登录的受保护操作跳转至此
// @Summary 登录入口
// @Tags 用户
// @Produce json
// @Param next query string false "登录后跳转地址"
// @Success 200 {object} response.Response
// @Router /auth/login/ [get]
func (h *Handler) LoginPage(c *gin.Context) {
	response.Page(c, h.year(), gin.H{"next": safeNext(c.Query("next"))})
}

// Login 登录，令牌同时写入 cookie 与响应体
// @Summary 登录
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login/ [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Next == "" {
		req.Next = c.Query("next")
	}
	u, token, err := h.userService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie, token, int(h.tokens.TTL().Seconds()), "/", "", false, true)
	if next := safeNext(req.Next); next != "" {
		response.Redirect(c, next)
		return
	}
	response.Success(c, gin.H{"token": token, "user": u})
}

// Logout 清除会话 cookie
// @Summary 退出登录
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout/ [post]
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie, "", -1, "/", "", false, true)
	response.Success(c, nil)
}

// ChangePassword 修改当前用户密码
// @Summary 修改密码
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body passwordChangeRequest true "旧密码与两次新密码"
// @Success 302 {string} string "跳转至修改成功页"
// @Failure 400 {object} response.Response
// @Router /auth/password_change/ [post]
func (h *Handler) ChangePassword(c *gin.Context) {
	var req passwordChangeRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.userService.ChangePassword(c.Request.Context(), identity(c), req.OldPassword, req.NewPassword1); err != nil {
		fail(c, err)
		return
	}
	response.Redirect(c, PasswordChangeDonePath)
}

// PasswordChangeDone 修改密码成功页
// @Summary 修改密码成功
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/password_change/done/ [get]
func (h *Handler) PasswordChangeDone(c *gin.Context) {
	response.Page(c, h.year(), gin.H{"message": "password changed"})
}
