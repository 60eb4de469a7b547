package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Timestamp int64             `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// healthHandler 存活检查
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   version,
		Timestamp: time.Now().Unix(),
	})
}

// pingHandler Ping 检查
func pingHandler(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// readyHandler 就绪检查：数据库与 Redis 都可用才算就绪
func readyHandler(db *gorm.DB, redisClient redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{
			"database": pingDatabase(ctx, db),
			"redis":    pingRedis(ctx, redisClient),
		}

		resp := HealthResponse{Status: "ready", Timestamp: time.Now().Unix(), Checks: checks}
		status := http.StatusOK
		for _, v := range checks {
			if v != "ok" {
				resp.Status = "not ready"
				status = http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(status, resp)
	}
}

func pingDatabase(ctx context.Context, db *gorm.DB) string {
	sqlDB, err := db.DB()
	if err != nil {
		return "error: " + err.Error()
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func pingRedis(ctx context.Context, redisClient redis.Cmdable) string {
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
