// Package auth 提供员工认证相关的 HTTP Handler
package auth

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk/internal/common/jwt"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	staffService "github.com/dumeirei/hotel-frontdesk/internal/service/staff"
)

// StaffService 登录所需的员工服务
type StaffService interface {
	Login(ctx context.Context, username, password string) (*staffService.LoginResult, error)
	Get(ctx context.Context, id int64) (*models.Employee, error)
}

// TokenRefresher 刷新令牌
type TokenRefresher interface {
	RefreshToken(refreshToken string) (*jwt.TokenPair, error)
}

// Handler 认证处理器
type Handler struct {
	staffService StaffService
	tokens       TokenRefresher
}

// NewHandler 创建认证处理器
func NewHandler(staffSvc StaffService, tokens TokenRefresher) *Handler {
	return &Handler{staffService: staffSvc, tokens: tokens}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Login 员工登录
// @Summary 员工登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "请求参数"
// @Success 200 {object} response.Response{data=staffService.LoginResult}
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请输入用户名和密码")
		return
	}

	result, err := h.staffService.Login(c.Request.Context(), req.Username, req.Password)
	handler.MustSucceed(c, err, result)
}

// Refresh 刷新令牌
// @Summary 刷新令牌
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "请求参数"
// @Success 200 {object} response.Response{data=jwt.TokenPair}
// @Router /api/v1/auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	pair, err := h.tokens.RefreshToken(req.RefreshToken)
	if err != nil {
		response.Unauthorized(c, "无效的令牌")
		return
	}
	response.Success(c, pair)
}

// Me 当前登录员工
// @Summary 当前登录员工
// @Tags 认证
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=models.Employee}
// @Router /api/v1/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	e, err := h.staffService.Get(c.Request.Context(), actor.StaffID)
	handler.MustSucceed(c, err, e)
}
