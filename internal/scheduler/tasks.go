package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/metrics"
)

// WakeUpChecker 叫醒检查
type WakeUpChecker interface {
	Check(ctx context.Context, now time.Time) ([]int64, error)
}

// RoomCounter 房态统计
type RoomCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// TaskHandler 任务处理器
type TaskHandler struct {
	wakeups WakeUpChecker
	rooms   RoomCounter
	now     func() time.Time
	log     *zap.Logger
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(wakeups WakeUpChecker, rooms RoomCounter) *TaskHandler {
	return &TaskHandler{
		wakeups: wakeups,
		rooms:   rooms,
		now:     time.Now,
		log:     logger.Named("task"),
	}
}

// CheckWakeUpCalls 检查到点的叫醒
func (h *TaskHandler) CheckWakeUpCalls(ctx context.Context) error {
	fired, err := h.wakeups.Check(ctx, h.now())
	if err != nil {
		return err
	}
	if len(fired) > 0 {
		h.log.Info("wake-up calls fired", zap.Int64s("rooms", fired))
	}
	return nil
}

// RefreshOccupancy 刷新房态指标
func (h *TaskHandler) RefreshOccupancy(ctx context.Context) error {
	counts, err := h.rooms.CountByStatus(ctx)
	if err != nil {
		return err
	}
	metrics.GetMetrics().SetRoomsByStatus(counts)
	return nil
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}

// SetupTasks 设置所有任务
func SetupTasks(scheduler *Scheduler, handler *TaskHandler, cfg *config.FrontDeskConfig) {
	// 叫醒检查间隔需小于一分钟，避免漏掉整分
	scheduler.AddTask("CheckWakeUpCalls", seconds(cfg.WakeUpCheckInterval, 15), handler.CheckWakeUpCalls)

	scheduler.AddTask("RefreshOccupancy", seconds(cfg.OccupancyInterval, 60), handler.RefreshOccupancy)
}
