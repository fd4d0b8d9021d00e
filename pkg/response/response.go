package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/pkg/logger"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Year    int         `json:"year,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "ok", Data: data})
}

// Page 页面类响应，附带当前年份
func Page(c *gin.Context, year int, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "ok", Data: data, Year: year})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "created", Data: data})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	if msg == "" {
		msg = http.StatusText(http.StatusNotFound)
	}
	c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Response{Code: http.StatusUnauthorized, Message: msg})
}

func TooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{
		Code:    http.StatusTooManyRequests,
		Message: http.StatusText(http.StatusTooManyRequests),
	})
}

// InternalError 记录错误并返回 500，不向客户端暴露细节
func InternalError(c *gin.Context, err error) {
	logger.Error("internal error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, Response{
		Code:    http.StatusInternalServerError,
		Message: http.StatusText(http.StatusInternalServerError),
	})
}

// Redirect 使用 302 跳转（未登录/无权限时的本地恢复）
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}
