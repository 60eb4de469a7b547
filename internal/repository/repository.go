// Package repository 提供数据访问层
// 所有方法通过 database.Conn 取连接，从而自动加入上下文中的事务
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
