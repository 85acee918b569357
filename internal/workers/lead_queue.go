package workers

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultLeadStream = "crm:lead-sync"
	DefaultLeadGroup  = "crm-workers"
)

// RedisLeadQueue appends application ids to the lead sync stream.
type RedisLeadQueue struct {
	rdb    *redis.Client
	stream string
}

func NewRedisLeadQueue(rdb *redis.Client, stream string) *RedisLeadQueue {
	if stream == "" {
		stream = DefaultLeadStream
	}
	return &RedisLeadQueue{rdb: rdb, stream: stream}
}

func (q *RedisLeadQueue) Enqueue(ctx context.Context, applicationID string) error {
	return q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{"application_id": applicationID},
	}).Err()
}
