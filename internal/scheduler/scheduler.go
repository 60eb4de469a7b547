// Package scheduler 前台后台任务：叫醒检查与房态指标刷新
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/metrics"
)

// Task 周期任务，单次执行超时等于间隔
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler 每个任务一个 goroutine，同一任务不会并发执行
type Scheduler struct {
	tasks  []Task
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *zap.Logger
}

// NewScheduler 创建调度器
func NewScheduler() *Scheduler {
	return &Scheduler{log: logger.Named("scheduler")}
}

// AddTask 注册任务，须在 Start 之前调用
func (s *Scheduler) AddTask(name string, interval time.Duration, run func(ctx context.Context) error) {
	s.tasks = append(s.tasks, Task{Name: name, Interval: interval, Run: run})
}

// Tasks 已注册任务
func (s *Scheduler) Tasks() []Task {
	return s.tasks
}

// Start 启动所有任务，启动时先各执行一次；ctx 取消或 Stop 时退出
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.log.Info("scheduler started", zap.Int("tasks", len(s.tasks)))
	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.loop(ctx, t)
	}
}

// Stop 取消任务并等待正在执行的一轮结束
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, t Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		s.runOnce(ctx, t)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// runOnce 执行一轮，panic 只影响本轮
func (s *Scheduler) runOnce(ctx context.Context, t Task) {
	ctx, cancel := context.WithTimeout(ctx, t.Interval)
	defer cancel()

	start := time.Now()
	result := "ok"
	defer func() {
		if rec := recover(); rec != nil {
			result = "panic"
			s.log.Error("task panicked", zap.String("task", t.Name), zap.Any("panic", rec))
		}
		metrics.GetMetrics().ObserveTask(t.Name, result, time.Since(start))
	}()

	if err := t.Run(ctx); err != nil {
		result = "error"
		s.log.Warn("task failed", zap.String("task", t.Name), zap.Error(fmt.Errorf("%s: %w", t.Name, err)))
	}
}
