// Package logger 前台系统的结构化日志
//
// 全局 zap 实例由 Init 建立，各服务通过 Named 取得带模块名的子日志器。
// 未调用 Init 时退化为开发模式日志，方便测试直接使用。
package logger

import (
	"os"
	"sync"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeLayout = "2006-01-02 15:04:05.000"

var (
	mu  sync.RWMutex
	log *zap.Logger
)

// Init 按配置建立全局日志器
func Init(cfg *config.LoggerConfig) error {
	sinks := writers(cfg)
	if len(sinks) == 0 {
		sinks = append(sinks, zapcore.AddSync(os.Stdout))
	}

	core := zapcore.NewCore(encoder(cfg.Format), zapcore.NewMultiWriteSyncer(sinks...), parseLevel(cfg.Level))

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Caller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	mu.Lock()
	log = zap.New(core, opts...)
	mu.Unlock()
	return nil
}

func encoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.MessageKey = "msg"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	ec.EncodeDuration = zapcore.MillisDurationEncoder
	ec.EncodeCaller = zapcore.ShortCallerEncoder

	if format == "json" {
		ec.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// writers output 为 stdout 时只写终端；配置了 file_path 时写滚动文件
func writers(cfg *config.LoggerConfig) []zapcore.WriteSyncer {
	var out []zapcore.WriteSyncer
	if cfg.Output == "" || cfg.Output == "stdout" {
		out = append(out, zapcore.AddSync(os.Stdout))
	}
	if cfg.FilePath != "" && cfg.Output != "stdout" {
		out = append(out, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}))
	}
	return out
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// GetLogger 返回全局日志器
func GetLogger() *zap.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		log, _ = zap.NewDevelopment()
	}
	return log
}

// Sync 刷新缓冲
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if log == nil {
		return nil
	}
	return log.Sync()
}

// Named 带模块名的子日志器，例如 Named("wakeup")
func Named(name string) *zap.Logger {
	return GetLogger().Named(name)
}

func Debug(msg string, fields ...zap.Field) { GetLogger().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { GetLogger().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { GetLogger().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { GetLogger().Error(msg, fields...) }

// 前台领域常用字段

func StaffID(id int64) zap.Field         { return zap.Int64("staff_id", id) }
func RoomID(id int64) zap.Field          { return zap.Int64("room_id", id) }
func RoomNumber(number string) zap.Field { return zap.String("room_number", number) }
func StayID(id int64) zap.Field          { return zap.Int64("stay_id", id) }
func TicketID(id int64) zap.Field        { return zap.Int64("ticket_id", id) }
func ShiftID(id int64) zap.Field         { return zap.Int64("shift_id", id) }
func Action(name string) zap.Field       { return zap.String("action", name) }
