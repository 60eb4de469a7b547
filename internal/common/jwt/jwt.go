// Package jwt 提供员工登录令牌管理
package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims 自定义 JWT 声明
type Claims struct {
	StaffID   int64  `json:"staff_id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"` // access, refresh
	jwt.RegisteredClaims
}

// Config JWT 配置
type Config struct {
	Secret            string
	AccessExpireTime  time.Duration
	RefreshExpireTime time.Duration
	Issuer            string
}

// Manager JWT 管理器
type Manager struct {
	config *Config
}

// TokenPair 令牌对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// Identity 令牌携带的员工身份
type Identity struct {
	StaffID  int64
	Username string
	Name     string
	Role     string
}

// 令牌类型
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// 预定义错误
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenNotActive = errors.New("token not active yet")
	ErrTokenWrongType = errors.New("wrong token type")
)

// NewManager 创建 JWT 管理器
func NewManager(config *Config) *Manager {
	return &Manager{
		config: config,
	}
}

// GenerateTokenPair 生成令牌对
func (m *Manager) GenerateTokenPair(id Identity) (*TokenPair, error) {
	now := time.Now()
	accessExpireAt := now.Add(m.config.AccessExpireTime)

	accessToken, err := m.generateToken(id, TokenTypeAccess, now, accessExpireAt)
	if err != nil {
		return nil, err
	}
	refreshToken, err := m.generateToken(id, TokenTypeRefresh, now, now.Add(m.config.RefreshExpireTime))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpireAt.Unix(),
	}, nil
}

func (m *Manager) generateToken(id Identity, tokenType string, now, expireAt time.Time) (string, error) {
	claims := &Claims{
		StaffID:   id.StaffID,
		Username:  id.Username,
		Name:      id.Name,
		Role:      id.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.config.Issuer,
			Subject:   strconv.FormatInt(id.StaffID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expireAt),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.config.Secret))
}

// ParseToken 校验签名、签发方与有效期
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.config.Issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(m.config.Secret), nil
	}, opts...)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotActive
	default:
		return nil, ErrTokenInvalid
	}
}

// ParseAccessToken 解析访问令牌，拒绝刷新令牌
func (m *Manager) ParseAccessToken(tokenString string) (*Claims, error) {
	claims, err := m.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrTokenWrongType
	}
	return claims, nil
}

// RefreshToken 使用刷新令牌换发新令牌对
func (m *Manager) RefreshToken(refreshTokenString string) (*TokenPair, error) {
	claims, err := m.ParseToken(refreshTokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, ErrTokenWrongType
	}

	return m.GenerateTokenPair(Identity{StaffID: claims.StaffID, Username: claims.Username, Name: claims.Name, Role: claims.Role})
}
