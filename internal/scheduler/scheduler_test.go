package scheduler

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

type countingChecker struct {
	calls atomic.Int32
	fired []int64
	err   error
	at    time.Time
}

func (c *countingChecker) Check(_ context.Context, now time.Time) ([]int64, error) {
	c.calls.Add(1)
	c.at = now
	return c.fired, c.err
}

type staticCounter map[string]int64

func (s staticCounter) CountByStatus(context.Context) (map[string]int64, error) { return s, nil }

func TestScheduler_RunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	s.AddTask("tick", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	s.AddTask("failing", time.Hour, func(context.Context) error {
		return stderrors.New("boom")
	})
	s.AddTask("panicking", 10*time.Millisecond, func(context.Context) error {
		panic("room lookup")
	})

	s.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestScheduler_StopsWithParentContext(t *testing.T) {
	s := NewScheduler()
	var deadline atomic.Bool
	s.AddTask("deadline", 20*time.Millisecond, func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		deadline.Store(ok)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()
	s.Stop()
	assert.True(t, deadline.Load())
}

func TestTaskHandler_CheckWakeUpCalls(t *testing.T) {
	checker := &countingChecker{fired: []int64{3}}
	h := NewTaskHandler(checker, staticCounter{})
	now := time.Date(2026, 3, 10, 6, 30, 0, 0, time.Local)
	h.now = func() time.Time { return now }

	require.NoError(t, h.CheckWakeUpCalls(context.Background()))
	assert.Equal(t, int32(1), checker.calls.Load())
	assert.Equal(t, now, checker.at)

	checker.err = stderrors.New("db down")
	assert.Error(t, h.CheckWakeUpCalls(context.Background()))
}

func TestTaskHandler_RefreshOccupancy(t *testing.T) {
	h := NewTaskHandler(&countingChecker{}, staticCounter{models.RoomStatusOccupied: 2})
	assert.NoError(t, h.RefreshOccupancy(context.Background()))
}

func TestSetupTasks(t *testing.T) {
	s := NewScheduler()
	SetupTasks(s, NewTaskHandler(&countingChecker{}, staticCounter{}), &config.FrontDeskConfig{WakeUpCheckInterval: 20})

	require.Len(t, s.Tasks(), 2)
	assert.Equal(t, "CheckWakeUpCalls", s.Tasks()[0].Name)
	assert.Equal(t, 20*time.Second, s.Tasks()[0].Interval)
	assert.Equal(t, time.Minute, s.Tasks()[1].Interval)
}
