// Package middleware 提供 HTTP 中间件
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/jwt"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
)

// 上下文键
const (
	ContextKeyStaffID  = "staff_id"
	ContextKeyUsername = "username"
	ContextKeyName     = "staff_name"
	ContextKeyRole     = "role"
	ContextKeyClaims   = "claims"
)

// StaffAuth 员工认证中间件
func StaffAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		claims, err := jwtManager.ParseAccessToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Unauthorized(c, "登录已过期，请重新登录")
			} else {
				response.Unauthorized(c, "无效的令牌")
			}
			c.Abort()
			return
		}

		c.Set(ContextKeyStaffID, claims.StaffID)
		c.Set(ContextKeyUsername, claims.Username)
		c.Set(ContextKeyName, claims.Name)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeyClaims, claims)

		c.Next()
	}
}

// extractToken 从请求中提取令牌
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	// 导出下载链接通过查询参数携带令牌
	return c.Query("token")
}

// GetStaffID 从上下文获取员工 ID
func GetStaffID(c *gin.Context) int64 {
	return c.GetInt64(ContextKeyStaffID)
}

// GetRole 从上下文获取角色
func GetRole(c *gin.Context) string {
	return c.GetString(ContextKeyRole)
}

// GetActorName 获取操作人显示名，未设置姓名时退回用户名
func GetActorName(c *gin.Context) string {
	if name := c.GetString(ContextKeyName); name != "" {
		return name
	}
	return c.GetString(ContextKeyUsername)
}

// GetClaims 从上下文获取完整的 Claims
func GetClaims(c *gin.Context) *jwt.Claims {
	claims, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	return claims.(*jwt.Claims)
}
