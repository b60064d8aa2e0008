package middleware

import (
	"context"
	"net/http"
	"strings"

	"expensetracker/service"

	"github.com/gin-gonic/gin"
)

const (
	contextKeyUID   = "userUID"
	contextKeyEmail = "userEmail"
)

// TokenVerifier 校验 Bearer 凭证，返回用户身份
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (*service.TokenClaims, error)
}

// Auth Bearer Token 认证中间件
// 凭证由外部身份服务签发，verifier 负责校验；
// 校验通过后把 uid/email 写入请求上下文，作为后续所有查询的租户边界
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "未提供认证凭证")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			abortUnauthorized(c, "未提供认证凭证")
			return
		}

		claims, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, "认证凭证无效或已过期")
			return
		}

		c.Set(contextKeyUID, claims.UID)
		c.Set(contextKeyEmail, claims.Email)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
	c.Abort()
}

// GetCurrentUID 获取当前请求的用户标识，未认证时返回空字符串
func GetCurrentUID(c *gin.Context) string {
	if uid, ok := c.Get(contextKeyUID); ok {
		if s, ok := uid.(string); ok {
			return s
		}
	}
	return ""
}

// GetCurrentEmail 获取当前请求的用户邮箱
func GetCurrentEmail(c *gin.Context) string {
	if email, ok := c.Get(contextKeyEmail); ok {
		if s, ok := email.(string); ok {
			return s
		}
	}
	return ""
}
