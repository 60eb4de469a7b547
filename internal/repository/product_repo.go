package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// ProductRepository 商品仓储
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create 创建商品
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return database.Conn(ctx, r.db).Create(p).Error
}

// GetByID 根据 ID 获取商品
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	if err := database.Conn(ctx, r.db).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ExistsByCode 编码是否已存在
func (r *ProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&models.Product{}).Where("code = ?", code).Count(&n).Error
	return n > 0, err
}

// Update 保存商品
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	return database.Conn(ctx, r.db).Save(p).Error
}

// List 获取商品列表，可按分类过滤
func (r *ProductRepository) List(ctx context.Context, category string) ([]*models.Product, error) {
	var list []*models.Product
	query := database.Conn(ctx, r.db).Model(&models.Product{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("name ASC").Find(&list).Error
	return list, err
}

// SearchByName 按名称或编码模糊搜索
func (r *ProductRepository) SearchByName(ctx context.Context, keyword string, limit int) ([]*models.Product, error) {
	var list []*models.Product
	like := "%" + keyword + "%"
	err := database.Conn(ctx, r.db).
		Where("LOWER(name) LIKE LOWER(?) OR code LIKE ?", like, like).
		Order("name ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ListLowStock 获取库存低于下限的商品
func (r *ProductRepository) ListLowStock(ctx context.Context) ([]*models.Product, error) {
	var list []*models.Product
	err := database.Conn(ctx, r.db).
		Where("stock <= min_stock").
		Order("stock ASC").
		Find(&list).Error
	return list, err
}

// Count 商品总数
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&models.Product{}).Count(&n).Error
	return n, err
}
