// Package admin 管理端 HTTP Handler
package admin

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	staffService "github.com/dumeirei/hotel-frontdesk/internal/service/staff"
)

// StaffService 员工服务
type StaffService interface {
	Create(ctx context.Context, req *staffService.CreateRequest, actor string) (*models.Employee, error)
	List(ctx context.Context, role string) ([]*models.Employee, error)
	Get(ctx context.Context, id int64) (*models.Employee, error)
	SetStatus(ctx context.Context, id int64, active bool) error
}

// StaffHandler 员工管理处理器
type StaffHandler struct {
	staff StaffService
}

// NewStaffHandler 创建员工管理处理器
func NewStaffHandler(staff StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// StatusRequest 启用或停用
type StatusRequest struct {
	Active bool `json:"active"`
}

// List 员工列表
// @Summary 员工列表
// @Tags 管理-员工
// @Produce json
// @Security Bearer
// @Param role query string false "角色，如 housekeeper"
// @Success 200 {object} response.Response{data=[]models.Employee}
// @Router /api/v1/staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	list, err := h.staff.List(c.Request.Context(), c.Query("role"))
	handler.MustSucceed(c, err, list)
}

// Get 员工详情
// @Summary 员工详情
// @Tags 管理-员工
// @Produce json
// @Security Bearer
// @Param id path int true "员工ID"
// @Success 200 {object} response.Response{data=models.Employee}
// @Router /api/v1/staff/{id} [get]
func (h *StaffHandler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "员工")
	if !ok {
		return
	}
	e, err := h.staff.Get(c.Request.Context(), id)
	handler.MustSucceed(c, err, e)
}

// Create 新增员工
// @Summary 新增员工
// @Tags 管理-员工
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body staffService.CreateRequest true "员工信息"
// @Success 200 {object} response.Response{data=models.Employee}
// @Router /api/v1/staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	var req staffService.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请填写姓名、用户名、密码和角色")
		return
	}

	e, err := h.staff.Create(c.Request.Context(), &req, actor.Name)
	handler.MustSucceedWithMessage(c, err, "创建成功", e)
}

// SetStatus 启用或停用员工
// @Summary 启用或停用员工
// @Tags 管理-员工
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "员工ID"
// @Param request body StatusRequest true "状态"
// @Success 200 {object} response.Response
// @Router /api/v1/staff/{id}/status [put]
func (h *StaffHandler) SetStatus(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "员工")
	if !ok {
		return
	}
	if id == actor.StaffID {
		response.BadRequest(c, "不能修改自己的状态")
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	handler.MustSucceed(c, h.staff.SetStatus(c.Request.Context(), id, req.Active), nil)
}
