package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashShift 收银班次，同一时间最多一个开启
type CashShift struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OperatorID    int64           `gorm:"index;not null" json:"operator_id"`
	OperatorName  string          `gorm:"type:varchar(100);not null" json:"operator_name"`
	Label         string          `gorm:"type:varchar(50);not null" json:"label"`
	StartingFloat decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"starting_float"`
	Status        string          `gorm:"type:varchar(10);index;not null" json:"status"`
	OpenedAt      time.Time       `gorm:"not null" json:"opened_at"`
	ClosedAt      *time.Time      `json:"closed_at,omitempty"`

	// 交班对账结果
	ExpectedCash   decimal.Decimal `gorm:"type:decimal(10,2)" json:"expected_cash"`
	ExpectedCredit decimal.Decimal `gorm:"type:decimal(10,2)" json:"expected_credit"`
	ExpectedDebit  decimal.Decimal `gorm:"type:decimal(10,2)" json:"expected_debit"`
	ExpectedPix    decimal.Decimal `gorm:"type:decimal(10,2)" json:"expected_pix"`
	DeclaredCash   decimal.Decimal `gorm:"type:decimal(10,2)" json:"declared_cash"`
	DeclaredCredit decimal.Decimal `gorm:"type:decimal(10,2)" json:"declared_credit"`
	DeclaredDebit  decimal.Decimal `gorm:"type:decimal(10,2)" json:"declared_debit"`
	DeclaredPix    decimal.Decimal `gorm:"type:decimal(10,2)" json:"declared_pix"`
	Difference     decimal.Decimal `gorm:"type:decimal(10,2)" json:"difference"`
	Observations   string          `gorm:"type:text" json:"observations"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (CashShift) TableName() string {
	return "cash_shifts"
}

// ShiftStatus 班次状态
const (
	ShiftStatusOpen   = "open"
	ShiftStatusClosed = "closed"
)
