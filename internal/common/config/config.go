// Package config 提供应用配置管理功能
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	globalConfig *Config
	once         sync.Once
)

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	NATS      NATSConfig      `mapstructure:"nats"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Crypto    CryptoConfig    `mapstructure:"crypto"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Business  BusinessConfig  `mapstructure:"business"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Name            string `mapstructure:"name"`
	Mode            string `mapstructure:"mode"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	LogMode         bool   `mapstructure:"log_mode"`
	SlowThreshold   int    `mapstructure:"slow_threshold"`
}

// DSN 返回数据库连接字符串
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode, d.Timezone,
	)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  int    `mapstructure:"dial_timeout"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// Addr 返回 Redis 地址
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MQTTConfig MQTT配置，用于客房叫醒提醒推送
type MQTTConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Broker         string `mapstructure:"broker"`
	ClientIDPrefix string `mapstructure:"client_id_prefix"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	KeepAlive      int    `mapstructure:"keep_alive"`
	AutoReconnect  bool   `mapstructure:"auto_reconnect"`
	ConnectTimeout int    `mapstructure:"connect_timeout"`
	QoS            byte   `mapstructure:"qos"`
	Retained       bool   `mapstructure:"retained"`
	TopicPrefix    string `mapstructure:"topic_prefix"`
}

// NATSConfig 活动事件总线配置
type NATSConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret             string `mapstructure:"secret"`
	AccessTokenExpire  int    `mapstructure:"access_token_expire"`
	RefreshTokenExpire int    `mapstructure:"refresh_token_expire"`
	Issuer             string `mapstructure:"issuer"`
}

// AccessTokenDuration 返回访问令牌有效期
func (j *JWTConfig) AccessTokenDuration() time.Duration {
	return time.Duration(j.AccessTokenExpire) * time.Hour
}

// RefreshTokenDuration 返回刷新令牌有效期
func (j *JWTConfig) RefreshTokenDuration() time.Duration {
	return time.Duration(j.RefreshTokenExpire) * time.Hour
}

// CryptoConfig 加密配置
type CryptoConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// AssistantConfig 前台助手（大模型）配置
type AssistantConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"`
}

// TimeoutDuration 返回助手调用超时
func (a *AssistantConfig) TimeoutDuration() time.Duration {
	return time.Duration(a.Timeout) * time.Second
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	Caller     bool   `mapstructure:"caller"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// TracingConfig 链路追踪配置
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// BusinessConfig 业务配置
type BusinessConfig struct {
	FrontDesk FrontDeskConfig `mapstructure:"frontdesk"`
	Cashier   CashierConfig   `mapstructure:"cashier"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

// FloorRange 楼层房号段定义
type FloorRange struct {
	Name     string  `mapstructure:"name"`
	Category string  `mapstructure:"category"`
	From     int     `mapstructure:"from"`
	To       int     `mapstructure:"to"`
	BaseRate float64 `mapstructure:"base_rate"`
}

// FrontDeskConfig 前台业务配置
type FrontDeskConfig struct {
	Floors              []FloorRange      `mapstructure:"floors"`
	SeedStatuses        map[string]string `mapstructure:"seed_statuses"`
	AllowUnblock        bool              `mapstructure:"allow_unblock"`
	WakeUpSnoozeMinutes int               `mapstructure:"wakeup_snooze_minutes"`
	WakeUpGraceMinutes  int               `mapstructure:"wakeup_grace_minutes"`
	WakeUpCheckInterval int               `mapstructure:"wakeup_check_interval"`
	OccupancyInterval   int               `mapstructure:"occupancy_interval"`
}

// CashierConfig 收银交班配置
type CashierConfig struct {
	Tolerance float64 `mapstructure:"tolerance"`
}

// BootstrapConfig 初始管理员配置
type BootstrapConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminName     string `mapstructure:"admin_name"`
}

// DefaultFloors 默认楼层房号表
func DefaultFloors() []FloorRange {
	return []FloorRange{
		{Name: "1º Andar", Category: "standard", From: 25, To: 38, BaseRate: 250},
		{Name: "2º Andar", Category: "luxury", From: 41, To: 59, BaseRate: 400},
		{Name: "3º Andar", Category: "master", From: 61, To: 79, BaseRate: 750},
	}
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	var err error
	once.Do(func() {
		// .env 文件可选，不存在时忽略
		_ = godotenv.Load()

		v := viper.New()

		// 设置配置文件路径
		if configPath != "" {
			v.SetConfigFile(configPath)
		} else {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath("./configs")
			v.AddConfigPath(".")
		}

		// 环境变量支持
		v.AutomaticEnv()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

		// 设置默认值
		setDefaults(v)

		// 读取配置文件
		if err = v.ReadInConfig(); err != nil {
			// 如果配置文件不存在，使用默认值
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return
			}
			err = nil
		}

		// 解析配置
		globalConfig = &Config{}
		if err = v.Unmarshal(globalConfig); err != nil {
			return
		}
		globalConfig.normalize()
		err = globalConfig.Validate()
	})

	return globalConfig, err
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		// 使用默认配置
		globalConfig = &Config{}
		v := viper.New()
		setDefaults(v)
		_ = v.Unmarshal(globalConfig)
		globalConfig.normalize()
	}
	return globalConfig
}

// normalize 补齐无法通过 SetDefault 表达的默认值
func (c *Config) normalize() {
	if len(c.Business.FrontDesk.Floors) == 0 {
		c.Business.FrontDesk.Floors = DefaultFloors()
	}
	if c.Business.FrontDesk.WakeUpSnoozeMinutes <= 0 {
		c.Business.FrontDesk.WakeUpSnoozeMinutes = 10
	}
}

const defaultJWTSecret = "your-super-secret-key-change-in-production"

// Validate 检查配置一致性；release 模式下拒绝默认密钥
func (c *Config) Validate() error {
	if c.IsRelease() && c.JWT.Secret == defaultJWTSecret {
		return fmt.Errorf("jwt.secret must be set in release mode")
	}
	if c.Business.Cashier.Tolerance < 0 {
		return fmt.Errorf("business.cashier.tolerance must not be negative")
	}
	floors := c.Business.FrontDesk.Floors
	for i, f := range floors {
		if f.From <= 0 || f.To < f.From {
			return fmt.Errorf("floor %q: invalid room range %d-%d", f.Name, f.From, f.To)
		}
		for _, other := range floors[:i] {
			if f.From <= other.To && other.From <= f.To {
				return fmt.Errorf("floor %q overlaps %q", f.Name, other.Name)
			}
		}
	}
	return nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.name", "hotel-frontdesk")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.shutdown_timeout", 10)

	// Database defaults
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "hotel_frontdesk")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "America/Sao_Paulo")
	v.SetDefault("database.sqlite_path", "./data/frontdesk.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.log_mode", true)
	v.SetDefault("database.slow_threshold", 200)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5)
	v.SetDefault("redis.read_timeout", 3)
	v.SetDefault("redis.write_timeout", 3)

	// MQTT defaults
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id_prefix", "frontdesk-")
	v.SetDefault("mqtt.keep_alive", 60)
	v.SetDefault("mqtt.auto_reconnect", true)
	v.SetDefault("mqtt.connect_timeout", 10)
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.retained", false)
	v.SetDefault("mqtt.topic_prefix", "hotel/")

	// NATS defaults
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject_prefix", "frontdesk.activity")

	// JWT defaults
	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.access_token_expire", 12)
	v.SetDefault("jwt.refresh_token_expire", 168)
	v.SetDefault("jwt.issuer", "hotel-frontdesk")

	// Crypto defaults
	v.SetDefault("crypto.bcrypt_cost", 10)

	// Assistant defaults
	v.SetDefault("assistant.enabled", false)
	v.SetDefault("assistant.base_url", "https://api.openai.com/v1/")
	v.SetDefault("assistant.model", "gpt-4o-mini")
	v.SetDefault("assistant.timeout", 30)

	// Logger defaults
	v.SetDefault("logger.level", "debug")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "./logs/app.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.caller", true)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Tracing defaults
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "hotel-frontdesk")
	v.SetDefault("tracing.sample_rate", 1.0)

	// CORS defaults
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"})
	v.SetDefault("cors.exposed_headers", []string{"X-Request-ID"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 86400)

	// Business defaults
	v.SetDefault("business.frontdesk.allow_unblock", false)
	v.SetDefault("business.frontdesk.wakeup_snooze_minutes", 10)
	v.SetDefault("business.frontdesk.wakeup_grace_minutes", 5)
	v.SetDefault("business.frontdesk.wakeup_check_interval", 15)
	v.SetDefault("business.frontdesk.occupancy_interval", 60)
	v.SetDefault("business.cashier.tolerance", 10.00)
	v.SetDefault("business.bootstrap.admin_username", "admin")
	v.SetDefault("business.bootstrap.admin_password", "admin123")
	v.SetDefault("business.bootstrap.admin_name", "Administrador")
}

// IsDebug 是否为调试模式
func (c *Config) IsDebug() bool {
	return c.Server.Mode == "debug"
}

// IsRelease 是否为发布模式
func (c *Config) IsRelease() bool {
	return c.Server.Mode == "release"
}
