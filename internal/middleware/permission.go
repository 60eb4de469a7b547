// Package middleware 提供 HTTP 中间件
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// RequireRoles 要求指定角色
func RequireRoles(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{})
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := GetRole(c)
		if role == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		if _, ok := roleSet[role]; !ok {
			response.Forbidden(c, "权限不足")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireManager 经理及以上
func RequireManager() gin.HandlerFunc {
	return RequireRoles(models.RoleManager, models.RoleAdmin, models.RoleMasterAdmin)
}

// RequireAdmin 管理员及以上
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin, models.RoleMasterAdmin)
}
