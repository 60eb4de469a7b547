package admin

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	catalogService "github.com/dumeirei/hotel-frontdesk/internal/service/catalog"
)

// ProductService 商品目录服务
type ProductService interface {
	Create(ctx context.Context, req *catalogService.CreateRequest, actor string) (*models.Product, error)
	List(ctx context.Context, category string) ([]*models.Product, error)
	Search(ctx context.Context, keyword string, limit int) ([]*models.Product, error)
	LowStock(ctx context.Context) ([]*models.Product, error)
	AdjustStock(ctx context.Context, id int64, delta int) (*models.Product, error)
}

// ProductHandler 商品管理处理器
type ProductHandler struct {
	products ProductService
}

// NewProductHandler 创建商品管理处理器
func NewProductHandler(products ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// StockRequest 库存调整
type StockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// List 商品列表，带 q 参数时按名称或编码搜索
// @Summary 商品列表
// @Tags 管理-商品
// @Produce json
// @Security Bearer
// @Param category query string false "分类"
// @Param q query string false "搜索关键词"
// @Param limit query int false "搜索条数"
// @Success 200 {object} response.Response{data=[]models.Product}
// @Router /api/v1/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	if q := c.Query("q"); q != "" {
		limit, _ := strconv.Atoi(c.Query("limit"))
		list, err := h.products.Search(c.Request.Context(), q, limit)
		handler.MustSucceed(c, err, list)
		return
	}
	list, err := h.products.List(c.Request.Context(), c.Query("category"))
	handler.MustSucceed(c, err, list)
}

// LowStock 库存不足的商品
// @Summary 库存不足的商品
// @Tags 管理-商品
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=[]models.Product}
// @Router /api/v1/products/low-stock [get]
func (h *ProductHandler) LowStock(c *gin.Context) {
	list, err := h.products.LowStock(c.Request.Context())
	handler.MustSucceed(c, err, list)
}

// Create 新增商品
// @Summary 新增商品
// @Tags 管理-商品
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body catalogService.CreateRequest true "商品信息"
// @Success 200 {object} response.Response{data=models.Product}
// @Router /api/v1/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	var req catalogService.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请填写编码、名称和分类")
		return
	}

	p, err := h.products.Create(c.Request.Context(), &req, actor.Name)
	handler.MustSucceed(c, err, p)
}

// AdjustStock 调整库存
// @Summary 调整库存
// @Tags 管理-商品
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "商品ID"
// @Param request body StockRequest true "调整数量，负数为出库"
// @Success 200 {object} response.Response{data=models.Product}
// @Router /api/v1/products/{id}/stock [post]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, ok := handler.ParseID(c, "商品")
	if !ok {
		return
	}
	var req StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请填写调整数量")
		return
	}

	p, err := h.products.AdjustStock(c.Request.Context(), id, req.Delta)
	handler.MustSucceed(c, err, p)
}
