package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product 商品目录，用于客房消费录入
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	Name        string          `gorm:"type:varchar(100);index;not null" json:"name"`
	Category    string          `gorm:"type:varchar(20);not null" json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	MinStock    int             `gorm:"not null;default:0" json:"min_stock"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Product) TableName() string {
	return "products"
}

// ProductCategory 商品分类
const (
	ProductCategoryMinibar    = "minibar"
	ProductCategoryBar        = "bar"
	ProductCategoryRestaurant = "restaurant"
	ProductCategoryReception  = "reception"
	ProductCategoryOther      = "other"
)

// IsValidProductCategory 校验商品分类
func IsValidProductCategory(c string) bool {
	switch c {
	case ProductCategoryMinibar, ProductCategoryBar, ProductCategoryRestaurant, ProductCategoryReception, ProductCategoryOther:
		return true
	}
	return false
}
