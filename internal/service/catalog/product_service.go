// Package catalog 提供商品目录服务，供客房消费录入时选择
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
)

const defaultSearchLimit = 10

// ProductService 商品服务
type ProductService struct {
	repo  *repository.ProductRepository
	audit audit.Recorder
}

// NewProductService 创建商品服务
func NewProductService(repo *repository.ProductRepository, recorder audit.Recorder) *ProductService {
	return &ProductService{repo: repo, audit: recorder}
}

// CreateRequest 新增商品
type CreateRequest struct {
	Code        string          `json:"code" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
	Description string          `json:"description"`
}

// Create 新增商品
func (s *ProductService) Create(ctx context.Context, req *CreateRequest, actor string) (*models.Product, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, errors.ErrInvalidParams.WithMessage("请填写商品编码和名称")
	}
	if !models.IsValidProductCategory(req.Category) {
		return nil, errors.ErrInvalidCategory
	}
	if !req.Price.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}
	if req.Stock < 0 || req.MinStock < 0 {
		return nil, errors.ErrInvalidQuantity
	}

	exists, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrProductExists
	}

	p := &models.Product{
		Code:        code,
		Name:        name,
		Category:    req.Category,
		Price:       req.Price.Round(2),
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.audit.Append(ctx, audit.Entry{
		Type:        models.ActivitySystem,
		Action:      audit.ActionProductCreated,
		Description: fmt.Sprintf("Produto %s cadastrado por R$ %s", p.Name, p.Price.StringFixed(2)),
		Actor:       actor,
	})
	return p, nil
}

// Get 获取商品
func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrProductNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return p, nil
}

// List 商品列表
func (s *ProductService) List(ctx context.Context, category string) ([]*models.Product, error) {
	if category != "" && !models.IsValidProductCategory(category) {
		return nil, errors.ErrInvalidCategory
	}
	list, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return list, nil
}

// Search 按名称或编码搜索，用于消费录入联想
func (s *ProductService) Search(ctx context.Context, keyword string, limit int) ([]*models.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []*models.Product{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	list, err := s.repo.SearchByName(ctx, keyword, limit)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return list, nil
}

// LowStock 库存不高于下限的商品
func (s *ProductService) LowStock(ctx context.Context) ([]*models.Product, error) {
	list, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return list, nil
}

// AdjustStock 调整库存，结果不能为负
func (s *ProductService) AdjustStock(ctx context.Context, id int64, delta int) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Stock+delta < 0 {
		return nil, errors.ErrInvalidQuantity
	}
	p.Stock += delta
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return p, nil
}

// SampleProducts 初始化用的示例商品
func SampleProducts() []*CreateRequest {
	d := decimal.RequireFromString
	return []*CreateRequest{
		{Code: "AGUA500", Name: "Água Mineral 500ml", Category: models.ProductCategoryMinibar, Price: d("6.00"), Stock: 48, MinStock: 12},
		{Code: "REFRI350", Name: "Refrigerante Lata", Category: models.ProductCategoryMinibar, Price: d("8.00"), Stock: 36, MinStock: 12},
		{Code: "CERV600", Name: "Cerveja 600ml", Category: models.ProductCategoryBar, Price: d("18.00"), Stock: 24, MinStock: 6},
		{Code: "CHOC", Name: "Chocolate", Category: models.ProductCategoryMinibar, Price: d("9.50"), Stock: 20, MinStock: 5},
		{Code: "CAFE", Name: "Café da Manhã Extra", Category: models.ProductCategoryRestaurant, Price: d("35.00")},
		{Code: "ESCOVA", Name: "Kit Escova de Dentes", Category: models.ProductCategoryReception, Price: d("12.00"), Stock: 10, MinStock: 3},
	}
}

// Seed 商品表为空时写入示例商品，返回写入数量
func (s *ProductService) Seed(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, errors.ErrDatabaseError.WithError(err)
	}
	if n > 0 {
		return 0, nil
	}
	samples := SampleProducts()
	for _, req := range samples {
		if _, err := s.Create(ctx, req, models.SystemActor); err != nil {
			return 0, err
		}
	}
	return len(samples), nil
}
