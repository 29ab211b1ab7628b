package devstore

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"kava/internal/models"
)

// Notifier publishes change events into Redis channels, one channel per
// table, decoupling the write path from whatever fans events out to
// subscribed clients.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends a change event to its table channel. A nil Redis client
// drops events silently; the polling fallback on clients covers that.
func (n *Notifier) Publish(ctx context.Context, ev models.ChangeEvent) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	changesPublished.WithLabelValues(string(ev.Table)).Inc()
	return n.rdb.Publish(ctx, "changes:"+string(ev.Table), payload).Err()
}

// StartPatternSubscriber subscribes to pattern `changes:*` and calls
// onMessage for each incoming payload.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "changes:*")
	ch := sub.Channel()

	go func() {
		for msg := range ch {
			onMessage(msg.Payload)
		}
	}()
	go func() {
		<-ctx.Done()
		if err := sub.Close(); err != nil {
			log.Printf("pubsub close error: %v", err)
		}
	}()

	return nil
}
