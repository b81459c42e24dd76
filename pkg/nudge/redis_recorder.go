package nudge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisRecorder keeps per-type accept/reject counters in Redis.
// Counters survive process restarts and are cheap to aggregate.
type RedisRecorder struct {
	client *redis.Client
}

// NewRedisRecorder creates a recorder over a Redis connection.
func NewRedisRecorder(addr, password string, db int) *RedisRecorder {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisRecorder{client: rdb}
}

// NewRedisRecorderWithClient wraps an existing client, for testing.
func NewRedisRecorderWithClient(client *redis.Client) *RedisRecorder {
	return &RedisRecorder{client: client}
}

func counterKey(nudgeType Type, accepted bool) string {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	return fmt.Sprintf("nudge:%s:%s", nudgeType, outcome)
}

// Record increments the matching counter. Redis faults are logged and
// swallowed.
func (r *RedisRecorder) Record(ctx context.Context, nudgeType Type, accepted bool) {
	if err := r.client.Incr(ctx, counterKey(nudgeType, accepted)).Err(); err != nil {
		slog.Warn("record nudge interaction", "error", err)
	}
}

// Count reads the counter for a type and outcome.
func (r *RedisRecorder) Count(ctx context.Context, nudgeType Type, accepted bool) (int64, error) {
	count, err := r.client.Get(ctx, counterKey(nudgeType, accepted)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}

// Close releases the underlying connection.
func (r *RedisRecorder) Close() error {
	return r.client.Close()
}

var _ Recorder = (*RedisRecorder)(nil)
