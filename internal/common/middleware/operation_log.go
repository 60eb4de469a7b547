package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
)

// 后台操作审计动作
const (
	ActionEmployeeStatus = "ALTERACAO_FUNCIONARIO"
	ActionStockAdjusted  = "AJUSTE_ESTOQUE"
)

// OperationConfig 路由对应的审计配置
type OperationConfig struct {
	Type        string
	Action      string
	Description string // 格式串，%s 为路径中的 id
}

// 服务层未单独记录的后台写操作
var operationMap = map[string]OperationConfig{
	"PUT /api/v1/staff/:id/status": {
		Type:        models.ActivityAccess,
		Action:      ActionEmployeeStatus,
		Description: "Status do funcionário #%s alterado",
	},
	"POST /api/v1/products/:id/stock": {
		Type:        models.ActivityFinancial,
		Action:      ActionStockAdjusted,
		Description: "Estoque do produto #%s ajustado",
	},
}

var sensitiveFields = []string{
	"password", "token", "secret", "api_key", "document",
}

// OperationLogger 后台操作审计中间件
type OperationLogger struct {
	recorder audit.Recorder
	actor    func(*gin.Context) string
	timeout  time.Duration
}

// NewOperationLogger 创建操作审计中间件，actor 从上下文取操作人
func NewOperationLogger(recorder audit.Recorder, actor func(*gin.Context) string) *OperationLogger {
	return &OperationLogger{recorder: recorder, actor: actor, timeout: 5 * time.Second}
}

// bodyWriter 同时保留响应体，用于判断业务码
type bodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Handler 返回中间件
func (l *OperationLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		config, ok := operationMap[c.Request.Method+" "+c.FullPath()]
		if !ok {
			c.Next()
			return
		}

		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}
		w := &bodyWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		if !succeeded(c.Writer.Status(), w.body.Bytes()) {
			return
		}
		l.record(c, config, requestBody)
	}
}

// succeeded HTTP 200 且业务码为 0
func succeeded(status int, body []byte) bool {
	if status != 200 {
		return false
	}
	var resp struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return false
	}
	return resp.Code == 0
}

func (l *OperationLogger) record(c *gin.Context, config OperationConfig, requestBody []byte) {
	entry := audit.Entry{
		Type:        config.Type,
		Action:      config.Action,
		Description: fmt.Sprintf(config.Description, c.Param("id")),
		Actor:       l.actor(c),
	}
	if len(requestBody) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(requestBody, &data); err == nil {
			entry.Details = models.JSON(filterSensitiveData(data).(map[string]interface{}))
		}
	}

	// 请求上下文结束后仍需写入
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), l.timeout)
	defer cancel()
	l.recorder.Append(ctx, entry)
}

// filterSensitiveData 过滤敏感字段
func filterSensitiveData(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				result[key] = "***"
				continue
			}
			result[key] = filterSensitiveData(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = filterSensitiveData(item)
		}
		return result
	default:
		return data
	}
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, f := range sensitiveFields {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}
