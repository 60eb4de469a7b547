package wakeup

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/dumeirei/hotel-frontdesk/internal/common/cache"
)

// RingingStore 正在响铃的房间集合，存放在 Redis Set 中
type RingingStore struct {
	rdb redis.Cmdable
	key string
}

// NewRingingStore 创建响铃集合
func NewRingingStore(rdb redis.Cmdable) *RingingStore {
	return &RingingStore{rdb: rdb, key: cache.KeyWakeUpRinging}
}

// Add 加入集合，返回是否为新加入
func (s *RingingStore) Add(ctx context.Context, roomID int64) (bool, error) {
	n, err := s.rdb.SAdd(ctx, s.key, strconv.FormatInt(roomID, 10)).Result()
	return n > 0, err
}

// Remove 移出集合，返回移出前是否在响铃
func (s *RingingStore) Remove(ctx context.Context, roomID int64) (bool, error) {
	n, err := s.rdb.SRem(ctx, s.key, strconv.FormatInt(roomID, 10)).Result()
	return n > 0, err
}

// Contains 是否在响铃
func (s *RingingStore) Contains(ctx context.Context, roomID int64) (bool, error) {
	return s.rdb.SIsMember(ctx, s.key, strconv.FormatInt(roomID, 10)).Result()
}

// Members 全部响铃房间
func (s *RingingStore) Members(ctx context.Context) (map[int64]bool, error) {
	members, err := s.rdb.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}
	result := make(map[int64]bool, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		result[id] = true
	}
	return result, nil
}
