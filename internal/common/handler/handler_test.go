// Package handler 通用辅助函数单元测试
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ==================== 错误处理测试 ====================

func TestHandleError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		c, _ := newContext("/")
		assert.False(t, HandleError(c, nil))
	})

	t.Run("应用错误", func(t *testing.T) {
		c, w := newContext("/")
		assert.True(t, HandleError(c, errors.ErrInvalidTransition))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, errors.ErrInvalidTransition.Code, decode(t, w).Code)
	})

	t.Run("包装后的应用错误", func(t *testing.T) {
		c, w := newContext("/")
		assert.True(t, HandleError(c, fmt.Errorf("checkout: %w", errors.ErrRoomNotFound)))
		assert.Equal(t, errors.ErrRoomNotFound.Code, decode(t, w).Code)
	})

	t.Run("普通错误隐藏细节", func(t *testing.T) {
		c, w := newContext("/")
		assert.True(t, HandleError(c, fmt.Errorf("sql: connection refused")))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestMustSucceedPage(t *testing.T) {
	c, w := newContext("/")
	MustSucceedPage(c, nil, []string{"a"}, 1, 1, 20)
	resp := decode(t, w)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, float64(1), resp.Data.(map[string]interface{})["total"])
}

// ==================== 身份测试 ====================

func TestRequireActor(t *testing.T) {
	c, w := newContext("/")
	_, ok := RequireActor(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, _ = newContext("/")
	c.Set(middleware.ContextKeyStaffID, int64(9))
	c.Set(middleware.ContextKeyName, "Maria")
	c.Set(middleware.ContextKeyRole, "manager")
	actor, ok := RequireActor(c)
	require.True(t, ok)
	assert.Equal(t, Actor{StaffID: 9, Name: "Maria", Role: "manager"}, actor)
}

// ==================== 参数解析测试 ====================

func TestParseID(t *testing.T) {
	c, _ := newContext("/")
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	id, ok := ParseID(c, "工单")
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	for _, v := range []string{"abc", "0", "-3"} {
		c, w := newContext("/")
		c.Params = gin.Params{{Key: "id", Value: v}}
		_, ok := ParseID(c, "工单")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestParseQueryID(t *testing.T) {
	c, _ := newContext("/?room_id=5")
	id, ok := ParseQueryID(c, "room_id", "房间")
	require.True(t, ok)
	assert.Equal(t, int64(5), *id)

	c, _ = newContext("/")
	id, ok = ParseQueryID(c, "room_id", "房间")
	assert.True(t, ok)
	assert.Nil(t, id)

	c, w := newContext("/?room_id=x")
	_, ok = ParseQueryID(c, "room_id", "房间")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseQueryDateRange(t *testing.T) {
	c, _ := newContext("/?start_date=2026-03-01&end_date=2026-03-02")
	start, end, ok := ParseQueryDateRange(c)
	require.True(t, ok)
	assert.Equal(t, 1, start.Day())
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59*time.Minute, time.Duration(end.Minute())*time.Minute)

	c, w := newContext("/?start_date=01/03/2026")
	_, _, ok = ParseQueryDateRange(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBindPagination(t *testing.T) {
	c, _ := newContext("/?page=2&page_size=500")
	p := BindPagination(c)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 100, p.PageSize)

	c, _ = newContext("/")
	p = BindPagination(c)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
}
