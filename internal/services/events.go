package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"subtitle-collector/internal/models"
)

// Observer receives every stage transition of a submission run.
type Observer interface {
	Publish(ctx context.Context, ev models.StageEvent)
}

// RedisPublisher pushes stage events to the per-submission pub/sub channel.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev models.StageEvent) {
	data, err := json.Marshal(models.NewStageMessage(ev))
	if err != nil {
		return
	}
	if err := p.client.Publish(ctx, models.SubmissionChannel(ev.SubmissionID), string(data)).Err(); err != nil {
		log.Printf("failed to publish stage %s for submission %s: %v", ev.Stage, ev.SubmissionID, err)
	}
}

// MultiObserver fans one event out to several observers.
type MultiObserver []Observer

func (m MultiObserver) Publish(ctx context.Context, ev models.StageEvent) {
	for _, o := range m {
		if o != nil {
			o.Publish(ctx, ev)
		}
	}
}
