package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction 收支流水
type Transaction struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Type          string          `gorm:"type:varchar(10);index;not null" json:"type"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Description   string          `gorm:"type:varchar(255);not null" json:"description"`
	Category      string          `gorm:"type:varchar(50);index;not null" json:"category"`
	PaymentMethod string          `gorm:"type:varchar(20)" json:"payment_method"`
	RoomID        *int64          `gorm:"index" json:"room_id,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 表名
func (Transaction) TableName() string {
	return "transactions"
}

// TransactionType 收支类型
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// TransactionCategory 收支分类
const (
	TransactionCategoryLodging     = "Hospedagem"
	TransactionCategoryConsumption = "Consumo"
	TransactionCategoryManual      = "Manual"
)
