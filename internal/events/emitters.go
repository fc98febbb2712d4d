package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fluxcrm/metamorph/internal/logging"

	"github.com/redis/go-redis/v9"
)

// LogEmitter writes events to the structured log. Always configured; it is
// the audit trail of last resort when no external backend is reachable.
type LogEmitter struct{}

func (LogEmitter) Deliver(event Event) error {
	logging.Info("engine event",
		"type", event.Type,
		"tenant_id", event.TenantID,
		"payload", event.Payload,
	)
	return nil
}

// RedisStreamEmitter appends events to a Redis Stream for downstream
// audit/notification consumers.
type RedisStreamEmitter struct {
	client *redis.Client
	stream string
}

// NewRedisStreamEmitter creates an emitter writing to the named stream.
func NewRedisStreamEmitter(client *redis.Client, stream string) *RedisStreamEmitter {
	if stream == "" {
		stream = "metamorph:events"
	}
	return &RedisStreamEmitter{client: client, stream: stream}
}

// Deliver appends one event to the stream.
// XADD stream_name * data <json>
func (e *RedisStreamEmitter) Deliver(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	args := &redis.XAddArgs{
		Stream: e.stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}

	if _, err := e.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}

	return nil
}
