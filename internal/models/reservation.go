package models

import "time"

// Reservation 预订（日历占位），不影响房态
type Reservation struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID     int64     `gorm:"index;not null" json:"room_id"`
	RoomNumber string    `gorm:"type:varchar(10);not null" json:"room_number"`
	GuestName  string    `gorm:"type:varchar(100);not null" json:"guest_name"`
	Phone      string    `gorm:"type:varchar(30)" json:"phone"`
	StartDate  time.Time `gorm:"type:date;index;not null" json:"start_date"`
	EndDate    time.Time `gorm:"type:date;index;not null" json:"end_date"`
	Nights     int       `gorm:"not null" json:"nights"`
	CreatedBy  string    `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Reservation) TableName() string {
	return "reservations"
}
