// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/dumeirei/hotel-frontdesk/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	RedisClient *redis.Client
	Limit       int                       // 限制次数
	Window      time.Duration             // 时间窗口
	KeyFunc     func(*gin.Context) string // 自定义键生成函数
}

// RateLimit 固定窗口限流中间件，Redis 不可用时放行
func RateLimit(config *RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.RedisClient == nil {
			c.Next()
			return
		}

		key := cache.BuildKey(cache.KeyPrefixFrontDesk, "ratelimit", c.ClientIP(), c.Request.URL.Path)
		if config.KeyFunc != nil {
			key = config.KeyFunc(c)
		}

		ctx := c.Request.Context()
		count, err := config.RedisClient.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			config.RedisClient.Expire(ctx, key, config.Window)
		}

		if int(count) > config.Limit {
			ttl, _ := config.RedisClient.TTL(ctx, key).Result()
			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", config.Limit))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))

			response.TooManyRequests(c, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", config.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", config.Limit-int(count)))

		c.Next()
	}
}

// LoginRateLimit 登录接口按 IP 限流
func LoginRateLimit(redisClient *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return RateLimit(&RateLimitConfig{
		RedisClient: redisClient,
		Limit:       limit,
		Window:      window,
		KeyFunc: func(c *gin.Context) string {
			return cache.BuildKey(cache.KeyPrefixFrontDesk, "ratelimit", "login", c.ClientIP())
		},
	})
}
