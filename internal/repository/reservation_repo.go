package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// ReservationRepository 预订仓储
type ReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository 创建预订仓储
func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create 创建预订
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return database.Conn(ctx, r.db).Create(reservation).Error
}

// GetByID 根据 ID 获取预订
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := database.Conn(ctx, r.db).First(&reservation, id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Update 保存预订
func (r *ReservationRepository) Update(ctx context.Context, reservation *models.Reservation) error {
	return database.Conn(ctx, r.db).Save(reservation).Error
}

// Delete 删除预订
func (r *ReservationRepository) Delete(ctx context.Context, id int64) error {
	return database.Conn(ctx, r.db).Delete(&models.Reservation{}, id).Error
}

// HasOverlap 检查同房间 [start, end) 区间是否与其他预订冲突
func (r *ReservationRepository) HasOverlap(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) (bool, error) {
	var count int64
	query := database.Conn(ctx, r.db).Model(&models.Reservation{}).
		Where("room_id = ?", roomID).
		Where("start_date < ? AND end_date > ?", end, start)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// ListRange 获取与 [from, to) 区间相交的预订
func (r *ReservationRepository) ListRange(ctx context.Context, from, to time.Time) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	err := database.Conn(ctx, r.db).
		Where("start_date < ? AND end_date > ?", to, from).
		Order("room_id ASC").
		Order("start_date ASC").
		Find(&reservations).Error
	return reservations, err
}
