package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/pkg/response"
)

const identityKey = "identity"

// Identity 从会话 cookie 或 Bearer 头解析当前用户；无效或缺失时为匿名
func Identity(tokens *auth.TokenManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := auth.Anonymous
		if raw := bearerToken(c); raw != "" {
			if parsed, err := tokens.Parse(raw); err == nil {
				id = parsed
			}
		} else if raw, err := c.Cookie(cookieName); err == nil && raw != "" {
			if parsed, err := tokens.Parse(raw); err == nil {
				id = parsed
			}
		}
		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentIdentity 返回当前请求的身份
func CurrentIdentity(c *gin.Context) auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(auth.Identity); ok {
			return id
		}
	}
	return auth.FromContext(c.Request.Context())
}

// LoginRequired 未登录（或 staff 操作的非 staff 用户）跳转登录页，并带上原始地址
func LoginRequired(gate *auth.Gate, action auth.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		d := gate.Check(CurrentIdentity(c), action, c.Request.URL.RequestURI())
		if !d.Allowed {
			response.Redirect(c, d.Redirect)
			c.Abort()
			return
		}
		c.Next()
	}
}
