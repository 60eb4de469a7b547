package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// TransactionRepository 收支流水仓储
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建收支流水仓储
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create 创建流水
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return database.Conn(ctx, r.db).Create(tx).Error
}

// TransactionFilter 流水查询条件
type TransactionFilter struct {
	Type          string
	Category      string
	PaymentMethod string
	RoomID        *int64
	StartDate     *time.Time
	EndDate       *time.Time
}

func (f *TransactionFilter) apply(query *gorm.DB) *gorm.DB {
	if f == nil {
		return query
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.PaymentMethod != "" {
		query = query.Where("payment_method = ?", f.PaymentMethod)
	}
	if f.RoomID != nil {
		query = query.Where("room_id = ?", *f.RoomID)
	}
	if f.StartDate != nil {
		query = query.Where("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		query = query.Where("created_at <= ?", *f.EndDate)
	}
	return query
}

// List 分页获取流水，新记录在前
func (r *TransactionRepository) List(ctx context.Context, filter *TransactionFilter, offset, limit int) ([]*models.Transaction, int64, error) {
	var txs []*models.Transaction
	var total int64

	query := filter.apply(database.Conn(ctx, r.db).Model(&models.Transaction{}))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// ListAll 获取满足条件的全部流水，按时间正序
func (r *TransactionRepository) ListAll(ctx context.Context, filter *TransactionFilter) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	err := filter.apply(database.Conn(ctx, r.db).Model(&models.Transaction{})).
		Order("created_at ASC").
		Order("id ASC").
		Find(&txs).Error
	return txs, err
}
