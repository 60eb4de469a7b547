// Package crypto 提供密码哈希与敏感信息脱敏
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword 对密码进行哈希，cost 非法时使用默认值
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword 验证密码
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateRandomString 生成随机字符串
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

// MaskDocument 证件号脱敏，保留末四位
func MaskDocument(doc string) string {
	n := utf8.RuneCountInString(doc)
	if n <= 4 {
		return doc
	}
	runes := []rune(doc)
	return strings.Repeat("*", n-4) + string(runes[n-4:])
}

// MaskPhone 电话脱敏，保留前四位和末两位
func MaskPhone(phone string) string {
	if len(phone) < 8 {
		return phone
	}
	return phone[:4] + strings.Repeat("*", len(phone)-6) + phone[len(phone)-2:]
}

// MaskEmail 邮箱脱敏
func MaskEmail(email string) string {
	i := strings.IndexByte(email, '@')
	if i <= 2 {
		return email
	}
	return email[:2] + "***" + email[i:]
}
