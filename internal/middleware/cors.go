package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int // 预检缓存秒数
}

// DefaultCORSConfig 前台页面与客房面板调用所需的默认值
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", headerRequestID},
		ExposeHeaders:    []string{"Content-Disposition", headerRequestID, "traceparent", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}
}

// FromSettings 由 cors.* 配置项构建，空值沿用默认
func FromSettings(origins, methods, headers, expose []string, credentials bool, maxAge int) *CORSConfig {
	cfg := DefaultCORSConfig()
	pick := func(dst *[]string, v []string) {
		if len(v) > 0 {
			*dst = v
		}
	}
	pick(&cfg.AllowOrigins, origins)
	pick(&cfg.AllowMethods, methods)
	pick(&cfg.AllowHeaders, headers)
	pick(&cfg.ExposeHeaders, expose)
	cfg.AllowCredentials = credentials
	if maxAge > 0 {
		cfg.MaxAge = maxAge
	}
	return cfg
}

// CORS 跨域中间件，未命中白名单的源不下发任何 CORS 头
func CORS(cfg *CORSConfig) gin.HandlerFunc {
	if cfg == nil {
		cfg = DefaultCORSConfig()
	}

	anyOrigin := false
	allowed := make(map[string]struct{}, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			anyOrigin = true
		}
		allowed[o] = struct{}{}
	}

	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	expose := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	// 携带凭证时浏览器不接受 "*"，回显请求源
	resolve := func(origin string) string {
		if origin == "" {
			return ""
		}
		if anyOrigin {
			if cfg.AllowCredentials {
				return origin
			}
			return "*"
		}
		if _, ok := allowed[origin]; ok {
			return origin
		}
		return ""
	}

	return func(c *gin.Context) {
		if origin := resolve(c.GetHeader("Origin")); origin != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if expose != "" {
				h.Set("Access-Control-Expose-Headers", expose)
			}
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
