package workers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// LeadSyncer is the slice of services.ZohoService the workers need.
type LeadSyncer interface {
	SyncApplication(ctx context.Context, applicationID string) error
}

var _ LeadSyncer = (services.ZohoService)(nil)

type LeadSyncWorkerPool struct {
	Redis      *redis.Client
	Zoho       LeadSyncer
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
	Block          time.Duration
}

func (p *LeadSyncWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Zoho == nil {
		return errors.New("LeadSyncWorkerPool missing dependency: Redis/Zoho must be set")
	}
	if p.Stream == "" {
		p.Stream = DefaultLeadStream
	}
	if p.Group == "" {
		p.Group = DefaultLeadGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Block <= 0 {
		p.Block = 5 * time.Second
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *LeadSyncWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    p.Block,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			p.Logger.WithError(err).WithField("consumer", consumer).Warn("lead stream read failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

// handleMsg never retries; a failed sync can be repeated from /zoho/sync.
func (p *LeadSyncWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	appID, _ := msg.Values["application_id"].(string)
	if appID == "" {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":       msg.ID,
		"application_id": appID,
	})

	start := time.Now()
	if err := p.Zoho.SyncApplication(ctx, appID); err != nil {
		log.WithError(err).Warn("lead sync failed")
		return
	}
	log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("lead synced")
}
