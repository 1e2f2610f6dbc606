package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"peakform/coaching-app/internal/config"
	"peakform/coaching-app/internal/platform/logger"

	goredis "github.com/redis/go-redis/v9"
)

const queueKeyPrefix = "notify:queue:"

// redisQueue implements Queue on a Redis list per user.
type redisQueue struct {
	rdb *goredis.Client
	log *logger.Logger
}

// NewRedisQueue connects to Redis and returns a Queue plus the underlying
// client for other consumers (MFA store shares the connection).
func NewRedisQueue(cfg config.RedisConfig, log *logger.Logger) (Queue, *goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisQueue{rdb: rdb, log: log.With("component", "notify_queue")}, rdb, nil
}

func (q *redisQueue) Push(ctx context.Context, userID string, ev Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, queueKeyPrefix+userID, raw).Err()
}

// Drain pops everything atomically so two concurrent readers never both see
// the same event.
func (q *redisQueue) Drain(ctx context.Context, userID string) ([]Event, error) {
	key := queueKeyPrefix + userID

	pipe := q.rdb.TxPipeline()
	listCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	raws, err := listCmd.Result()
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(raws))
	for _, raw := range raws {
		var ev Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			q.log.Warn("dropping undecodable notification", "user", userID, "err", err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}
