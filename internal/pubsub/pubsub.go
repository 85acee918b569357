package pubsub

import (
	"context"
	"encoding/json"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/redis/go-redis/v9"
)

// SubscriptionChannel is the Redis channel carrying one profile's subscription changes.
func SubscriptionChannel(userID string) string {
	return "profile:" + userID + ":subscription"
}

type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) PublishSubscription(ctx context.Context, change models.SubscriptionChange) error {
	b, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, SubscriptionChannel(change.UserID), b).Err()
}
