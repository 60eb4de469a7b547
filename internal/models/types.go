// Package models 定义数据模型
package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSON 自定义 JSON 类型
type JSON map[string]interface{}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// AllModels 返回需要迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{
		&Room{},
		&Stay{},
		&ConsumptionItem{},
		&PaymentEntry{},
		&MaintenanceTicket{},
		&Reservation{},
		&CashShift{},
		&Transaction{},
		&ActivityLog{},
		&Employee{},
		&Product{},
	}
}
