// Package assistant 前台助手 HTTP Handler
package assistant

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	assistantService "github.com/dumeirei/hotel-frontdesk/internal/service/assistant"
)

// AssistantService 助手服务
type AssistantService interface {
	Snapshot(ctx context.Context) (string, error)
	Ask(ctx context.Context, question string) (*assistantService.Answer, error)
}

// Handler 助手处理器
type Handler struct {
	assistant AssistantService
}

// NewHandler 创建助手处理器
func NewHandler(assistant AssistantService) *Handler {
	return &Handler{assistant: assistant}
}

// AskRequest 提问
type AskRequest struct {
	Question string `json:"question"`
}

// Ask 向助手提问
// @Summary 向助手提问
// @Description 回答基于当前房态与未完成工单，不会修改任何数据
// @Tags 助手
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body AskRequest true "问题"
// @Success 200 {object} response.Response{data=assistantService.Answer}
// @Router /api/v1/assistant/ask [post]
func (h *Handler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	answer, err := h.assistant.Ask(c.Request.Context(), req.Question)
	handler.MustSucceed(c, err, answer)
}

// Snapshot 当前房态摘要
// @Summary 当前房态摘要
// @Tags 助手
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response
// @Router /api/v1/assistant/snapshot [get]
func (h *Handler) Snapshot(c *gin.Context) {
	text, err := h.assistant.Snapshot(c.Request.Context())
	handler.MustSucceed(c, err, gin.H{"snapshot": text})
}
