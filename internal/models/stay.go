package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stay 入住记录
// 每间房同时最多一条；退房时连同消费、收款一起删除
type Stay struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID           int64           `gorm:"uniqueIndex;not null" json:"room_id"`
	GuestName        string          `gorm:"type:varchar(100);not null" json:"guest_name"`
	DocumentType     string          `gorm:"type:varchar(20);not null" json:"document_type"`
	Document         string          `gorm:"type:varchar(50);not null" json:"document"`
	Phone            string          `gorm:"type:varchar(30)" json:"phone"`
	Email            string          `gorm:"type:varchar(100)" json:"email"`
	GuestsCount      int             `gorm:"not null;default:1" json:"guests_count"`
	VehicleModel     string          `gorm:"type:varchar(50)" json:"vehicle_model"`
	VehicleColor     string          `gorm:"type:varchar(30)" json:"vehicle_color"`
	VehiclePlate     string          `gorm:"type:varchar(20)" json:"vehicle_plate"`
	CheckInDate      string          `gorm:"type:varchar(10);not null" json:"check_in_date"`
	CheckInTime      string          `gorm:"type:varchar(5)" json:"check_in_time"`
	ExpectedCheckout string          `gorm:"type:varchar(10);not null" json:"expected_checkout"`
	DailyRate        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"daily_rate"`
	WakeUpEnabled    bool            `gorm:"not null;default:false" json:"wake_up_enabled"`
	WakeUpDate       string          `gorm:"type:varchar(10)" json:"wake_up_date"`
	WakeUpCall       string          `gorm:"type:varchar(5)" json:"wake_up_call"`
	WakeUpFiredFor   string          `gorm:"type:varchar(16)" json:"-"`
	Notes            string          `gorm:"type:text" json:"notes"`
	CreatedBy        string          `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Room        *Room             `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Consumption []ConsumptionItem `gorm:"foreignKey:StayID" json:"consumption"`
	Payments    []PaymentEntry    `gorm:"foreignKey:StayID" json:"payments"`
}

// TableName 表名
func (Stay) TableName() string {
	return "stays"
}

// WakeUpSchedule 叫醒时间键（日期 + 时分），用于判定是否已响铃
func (s *Stay) WakeUpSchedule() string {
	return s.WakeUpDate + " " + s.WakeUpCall
}

// DocumentType 证件类型
const (
	DocumentTypeRG       = "RG"
	DocumentTypeCPF      = "CPF"
	DocumentTypeCNH      = "CNH"
	DocumentTypePassport = "PASSPORT"
)

// ConsumptionItem 消费明细，入住期间只追加
type ConsumptionItem struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	StayID     int64           `gorm:"index;not null" json:"stay_id"`
	Item       string          `gorm:"type:varchar(100);not null" json:"item"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (ConsumptionItem) TableName() string {
	return "stay_consumption_items"
}

// PaymentEntry 收款记录，入住期间只追加
type PaymentEntry struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	StayID    int64           `gorm:"index;not null" json:"stay_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method    string          `gorm:"type:varchar(20);not null" json:"method"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (PaymentEntry) TableName() string {
	return "stay_payments"
}

// PaymentMethod 支付方式
const (
	PaymentMethodCash   = "cash"
	PaymentMethodCredit = "credit"
	PaymentMethodDebit  = "debit"
	PaymentMethodPix    = "pix"
)

// PaymentMethods 全部支付方式，按对账顺序排列
var PaymentMethods = []string{PaymentMethodCash, PaymentMethodCredit, PaymentMethodDebit, PaymentMethodPix}

// IsValidPaymentMethod 校验支付方式
func IsValidPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
