package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// ActivityRepository 审计日志仓储
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository 创建审计日志仓储
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create 写入审计日志
func (r *ActivityRepository) Create(ctx context.Context, log *models.ActivityLog) error {
	return database.Conn(ctx, r.db).Create(log).Error
}

// ActivityFilter 审计日志查询条件
type ActivityFilter struct {
	Type      string
	Actor     string
	Keyword   string
	StartDate *time.Time
	EndDate   *time.Time
}

// List 分页获取审计日志，新记录在前
func (r *ActivityRepository) List(ctx context.Context, filter *ActivityFilter, offset, limit int) ([]*models.ActivityLog, int64, error) {
	var logs []*models.ActivityLog
	var total int64

	query := database.Conn(ctx, r.db).Model(&models.ActivityLog{})
	if filter != nil {
		if filter.Type != "" {
			query = query.Where("type = ?", filter.Type)
		}
		if filter.Actor != "" {
			query = query.Where("actor = ?", filter.Actor)
		}
		if filter.Keyword != "" {
			like := "%" + filter.Keyword + "%"
			query = query.Where("description LIKE ? OR action LIKE ?", like, like)
		}
		if filter.StartDate != nil {
			query = query.Where("created_at >= ?", *filter.StartDate)
		}
		if filter.EndDate != nil {
			query = query.Where("created_at <= ?", *filter.EndDate)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
