package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// StayRepository 入住记录仓储
type StayRepository struct {
	db *gorm.DB
}

// NewStayRepository 创建入住记录仓储
func NewStayRepository(db *gorm.DB) *StayRepository {
	return &StayRepository{db: db}
}

func preloadLedger(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Consumption", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
}

// Create 创建入住记录（连同初始收款）
func (r *StayRepository) Create(ctx context.Context, stay *models.Stay) error {
	return database.Conn(ctx, r.db).Create(stay).Error
}

// GetByRoomID 获取房间当前入住记录（含消费和收款）
func (r *StayRepository) GetByRoomID(ctx context.Context, roomID int64) (*models.Stay, error) {
	var stay models.Stay
	err := database.Conn(ctx, r.db).
		Scopes(preloadLedger).
		Where("room_id = ?", roomID).
		First(&stay).Error
	if err != nil {
		return nil, err
	}
	return &stay, nil
}

// ExistsForRoom 房间是否存在入住记录
func (r *StayRepository) ExistsForRoom(ctx context.Context, roomID int64) (bool, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&models.Stay{}).Where("room_id = ?", roomID).Count(&n).Error
	return n > 0, err
}

// UpdateFields 更新入住记录的指定字段
func (r *StayRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return database.Conn(ctx, r.db).Model(&models.Stay{}).Where("id = ?", id).Updates(fields).Error
}

// AddConsumption 追加消费明细
func (r *StayRepository) AddConsumption(ctx context.Context, item *models.ConsumptionItem) error {
	return database.Conn(ctx, r.db).Create(item).Error
}

// AddPayment 追加收款记录
func (r *StayRepository) AddPayment(ctx context.Context, payment *models.PaymentEntry) error {
	return database.Conn(ctx, r.db).Create(payment).Error
}

// Delete 删除入住记录及其消费、收款
func (r *StayRepository) Delete(ctx context.Context, stayID int64) error {
	conn := database.Conn(ctx, r.db)
	if err := conn.Where("stay_id = ?", stayID).Delete(&models.ConsumptionItem{}).Error; err != nil {
		return err
	}
	if err := conn.Where("stay_id = ?", stayID).Delete(&models.PaymentEntry{}).Error; err != nil {
		return err
	}
	return conn.Delete(&models.Stay{}, stayID).Error
}

// ListActive 获取全部在住记录
func (r *StayRepository) ListActive(ctx context.Context) ([]*models.Stay, error) {
	var stays []*models.Stay
	err := database.Conn(ctx, r.db).
		Scopes(preloadLedger).
		Preload("Room").
		Order("room_id ASC").
		Find(&stays).Error
	return stays, err
}

// ListWakeUpEnabled 获取开启叫醒的入住记录
func (r *StayRepository) ListWakeUpEnabled(ctx context.Context) ([]*models.Stay, error) {
	var stays []*models.Stay
	err := database.Conn(ctx, r.db).
		Where("wake_up_enabled = ?", true).
		Order("room_id ASC").
		Find(&stays).Error
	return stays, err
}

// GuestNames 获取房间ID到客人姓名的映射
func (r *StayRepository) GuestNames(ctx context.Context) (map[int64]string, error) {
	var rows []struct {
		RoomID    int64
		GuestName string
	}
	err := database.Conn(ctx, r.db).Model(&models.Stay{}).
		Select("room_id, guest_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(rows))
	for _, row := range rows {
		names[row.RoomID] = row.GuestName
	}
	return names, nil
}
