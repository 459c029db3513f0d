package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStream пишет события в Redis Stream для внешних потребителей
type RedisStream struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStream; maxLen <= 0 отключает обрезку стрима
func NewRedisStream(client *redis.Client, stream string, maxLen int64) *RedisStream {
	return &RedisStream{client: client, stream: stream, maxLen: maxLen}
}

func (r *RedisStream) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{
			"type":       string(e.Type),
			"related_id": e.RelatedID,
			"payload":    string(payload),
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
	}
	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", r.stream, err)
	}
	return nil
}

// Decode восстанавливает событие из записи стрима
func Decode(msg redis.XMessage) (Event, error) {
	raw, ok := msg.Values["payload"].(string)
	if !ok {
		return Event{}, fmt.Errorf("stream message %s: missing payload", msg.ID)
	}
	var e Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return Event{}, fmt.Errorf("stream message %s: %w", msg.ID, err)
	}
	return e, nil
}
