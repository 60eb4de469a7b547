package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// RoomRepository 客房仓储
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建客房仓储
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// CreateBatch 批量创建客房
func (r *RoomRepository) CreateBatch(ctx context.Context, rooms []*models.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	return database.Conn(ctx, r.db).CreateInBatches(rooms, 100).Error
}

// Count 客房总数
func (r *RoomRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&models.Room{}).Count(&n).Error
	return n, err
}

// GetByID 根据 ID 获取客房
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	if err := database.Conn(ctx, r.db).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// GetByNumber 根据房号获取客房
func (r *RoomRepository) GetByNumber(ctx context.Context, number string) (*models.Room, error) {
	var room models.Room
	if err := database.Conn(ctx, r.db).Where("number = ?", number).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// RoomFilter 客房查询条件
type RoomFilter struct {
	Status   string
	Category string
	Floor    int
}

// List 获取客房列表，按楼层、房号排序
func (r *RoomRepository) List(ctx context.Context, filter *RoomFilter) ([]*models.Room, error) {
	var rooms []*models.Room
	query := database.Conn(ctx, r.db).Model(&models.Room{})

	if filter != nil {
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Category != "" {
			query = query.Where("category = ?", filter.Category)
		}
		if filter.Floor > 0 {
			query = query.Where("floor = ?", filter.Floor)
		}
	}

	err := query.Order("floor ASC").Order("LENGTH(number) ASC").Order("number ASC").Find(&rooms).Error
	return rooms, err
}

// UpdateStatus 更新房态
func (r *RoomRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	result := database.Conn(ctx, r.db).Model(&models.Room{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByStatus 按房态统计
func (r *RoomRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := database.Conn(ctx, r.db).Model(&models.Room{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Count
	}
	return result, nil
}
