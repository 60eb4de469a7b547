// Package config 配置管理单元测试
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== Load 测试 ====================

func TestLoad_WithDefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "hotel-frontdesk", cfg.Server.Name)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 6379, cfg.Redis.Port)
}

func TestLoad_WithConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.yaml")

	configContent := `
server:
  name: "test-frontdesk"
  port: 9000
business:
  frontdesk:
    allow_unblock: true
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	// sync.Once 限制下可能返回先前加载的配置，只校验不报错
	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)
}

// ==================== 连接串测试 ====================

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name   string
		config DatabaseConfig
		want   string
	}{
		{
			name: "postgres",
			config: DatabaseConfig{
				Driver:   "postgres",
				Host:     "localhost",
				Port:     5432,
				User:     "postgres",
				Password: "secret",
				Name:     "hotel",
				SSLMode:  "disable",
				Timezone: "UTC",
			},
			want: "host=localhost port=5432 user=postgres password=secret dbname=hotel sslmode=disable TimeZone=UTC",
		},
		{
			name:   "sqlite",
			config: DatabaseConfig{Driver: "sqlite", SQLitePath: "./data/test.db"},
			want:   "./data/test.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.DSN())
		})
	}
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "redis.example.com", Port: 6380}
	assert.Equal(t, "redis.example.com:6380", cfg.Addr())
}

func TestJWTConfig_Durations(t *testing.T) {
	cfg := JWTConfig{AccessTokenExpire: 12, RefreshTokenExpire: 168}
	assert.Equal(t, 12*time.Hour, cfg.AccessTokenDuration())
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenDuration())
}

func TestConfig_Mode(t *testing.T) {
	assert.True(t, (&Config{Server: ServerConfig{Mode: "debug"}}).IsDebug())
	assert.False(t, (&Config{Server: ServerConfig{Mode: "debug"}}).IsRelease())
	assert.True(t, (&Config{Server: ServerConfig{Mode: "release"}}).IsRelease())
	assert.False(t, (&Config{Server: ServerConfig{Mode: ""}}).IsDebug())
}

// ==================== 业务配置测试 ====================

func TestFrontDeskConfig_Defaults(t *testing.T) {
	cfg := Get()
	fd := cfg.Business.FrontDesk

	assert.False(t, fd.AllowUnblock)
	assert.Equal(t, 10, fd.WakeUpSnoozeMinutes)
	assert.Equal(t, 5, fd.WakeUpGraceMinutes)
	assert.Equal(t, 15, fd.WakeUpCheckInterval)
	assert.Equal(t, 10.00, cfg.Business.Cashier.Tolerance)

	require.Len(t, fd.Floors, 3)
	assert.Equal(t, FloorRange{Name: "1º Andar", Category: "standard", From: 25, To: 38, BaseRate: 250}, fd.Floors[0])
	assert.Equal(t, FloorRange{Name: "2º Andar", Category: "luxury", From: 41, To: 59, BaseRate: 400}, fd.Floors[1])
	assert.Equal(t, FloorRange{Name: "3º Andar", Category: "master", From: 61, To: 79, BaseRate: 750}, fd.Floors[2])
}

func TestConfig_AllFieldsPopulated(t *testing.T) {
	cfg := Get()
	require.NotNil(t, cfg)

	assert.NotEmpty(t, cfg.Server.Name)
	assert.NotEmpty(t, cfg.Database.Driver)
	assert.NotEmpty(t, cfg.JWT.Secret)
	assert.NotEmpty(t, cfg.Logger.Level)
	assert.NotEmpty(t, cfg.Assistant.Model)
	assert.Equal(t, 30*time.Second, cfg.Assistant.TimeoutDuration())
	assert.Equal(t, "frontdesk.activity", cfg.NATS.SubjectPrefix)
	assert.Equal(t, "hotel/", cfg.MQTT.TopicPrefix)
	assert.Contains(t, cfg.CORS.AllowedHeaders, "Authorization")
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Server.Mode = "release"
		c.JWT.Secret = "rotated-secret"
		c.Business.FrontDesk.Floors = DefaultFloors()
		return c
	}
	require.NoError(t, valid().Validate())

	c := valid()
	c.JWT.Secret = defaultJWTSecret
	assert.ErrorContains(t, c.Validate(), "jwt.secret")

	c = valid()
	c.Server.Mode = "debug"
	c.JWT.Secret = defaultJWTSecret
	assert.NoError(t, c.Validate())

	c = valid()
	c.Business.Cashier.Tolerance = -1
	assert.Error(t, c.Validate())

	c = valid()
	c.Business.FrontDesk.Floors = append(c.Business.FrontDesk.Floors, FloorRange{Name: "Anexo", From: 30, To: 32})
	assert.ErrorContains(t, c.Validate(), "overlaps")

	c = valid()
	c.Business.FrontDesk.Floors = []FloorRange{{Name: "Térreo", From: 10, To: 5}}
	assert.ErrorContains(t, c.Validate(), "invalid room range")
}
