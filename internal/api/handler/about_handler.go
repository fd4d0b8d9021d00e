package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/pkg/response"
)

type aboutPage struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Stack []string `json:"stack,omitempty"`
}

// AboutAuthor
// @Summary 关于作者
// @Tags 关于
// @Produce json
// @Success 200 {object} response.Response
// @Router /about/author/ [get]
func (h *Handler) AboutAuthor(c *gin.Context) {
	response.Page(c, h.year(), aboutPage{
		Title: "Об авторе",
		Body:  "Yatube: блог-платформа с группами, комментариями и подписками.",
	})
}

// AboutTech
// @Summary 技术栈
// @Tags 关于
// @Produce json
// @Success 200 {object} response.Response
// @Router /about/tech/ [get]
func (h *Handler) AboutTech(c *gin.Context) {
	response.Page(c, h.year(), aboutPage{
		Title: "Технологии",
		Body:  "HTTP API на Go.",
		Stack: []string{"gin", "gorm", "redis", "zap", "viper", "prometheus", "opentelemetry"},
	})
}
