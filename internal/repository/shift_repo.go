package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// ShiftRepository 收银班次仓储
type ShiftRepository struct {
	db *gorm.DB
}

// NewShiftRepository 创建收银班次仓储
func NewShiftRepository(db *gorm.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// Create 创建班次
func (r *ShiftRepository) Create(ctx context.Context, shift *models.CashShift) error {
	return database.Conn(ctx, r.db).Create(shift).Error
}

// GetOpen 获取当前开启的班次
func (r *ShiftRepository) GetOpen(ctx context.Context) (*models.CashShift, error) {
	var shift models.CashShift
	err := database.Conn(ctx, r.db).
		Where("status = ?", models.ShiftStatusOpen).
		Order("id DESC").
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// GetByID 根据 ID 获取班次
func (r *ShiftRepository) GetByID(ctx context.Context, id int64) (*models.CashShift, error) {
	var shift models.CashShift
	if err := database.Conn(ctx, r.db).First(&shift, id).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

// Update 保存班次
func (r *ShiftRepository) Update(ctx context.Context, shift *models.CashShift) error {
	return database.Conn(ctx, r.db).Save(shift).Error
}

// List 获取班次历史
func (r *ShiftRepository) List(ctx context.Context, offset, limit int) ([]*models.CashShift, int64, error) {
	var shifts []*models.CashShift
	var total int64

	query := database.Conn(ctx, r.db).Model(&models.CashShift{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("opened_at DESC").Offset(offset).Limit(limit).Find(&shifts).Error
	return shifts, total, err
}
