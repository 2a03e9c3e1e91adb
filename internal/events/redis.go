package events

import (
	"context"
	"encoding/json"
	"time"

	"sealed_rps/internal/domain"
	"sealed_rps/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// NewRedisClient connects and pings. It returns nil, nil when addr is empty.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// RedisRelay republishes events as JSON on a pub/sub channel so other
// processes can follow the ledger.
type RedisRelay struct {
	client  *redis.Client
	channel string
}

func NewRedisRelay(client *redis.Client, channel string) *RedisRelay {
	return &RedisRelay{client: client, channel: channel}
}

func (r *RedisRelay) Handle(ctx context.Context, ev domain.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error("marshal event", "event_id", ev.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		logger.Warn("redis publish failed", "channel", r.channel, "event_id", ev.ID, "error", err)
	}
}

// Follow subscribes to the channel and calls fn for each decoded event
// until ctx is done.
func (r *RedisRelay) Follow(ctx context.Context, fn Handler) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warn("bad event payload", "channel", r.channel, "error", err)
				continue
			}
			fn(ctx, ev)
		}
	}
}
