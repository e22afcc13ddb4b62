// Package notify delivers best-effort user event notifications.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Dispatcher publishes an event to a user's event channel. Delivery is best
// effort: callers treat failures as non-fatal and must never let them surface
// as operation errors.
type Dispatcher interface {
	Notify(ctx context.Context, userID, eventType string, payload map[string]any)
}

// RedisDispatcher publishes events to Redis pub/sub, one channel per user.
type RedisDispatcher struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisDispatcher creates a dispatcher publishing to user:{id}:events channels.
func NewRedisDispatcher(client *redis.Client, logger *slog.Logger) *RedisDispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &RedisDispatcher{client: client, logger: logger}
}

// Notify publishes the event as JSON. Failures are logged and swallowed.
func (d *RedisDispatcher) Notify(ctx context.Context, userID, eventType string, payload map[string]any) {
	event := map[string]any{
		"type":      eventType,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range payload {
		event[k] = v
	}

	body, err := json.Marshal(event)
	if err != nil {
		d.logger.WarnContext(ctx, "skipping unserializable notification",
			"user_id", userID, "event_type", eventType, "error", err)
		return
	}

	channel := fmt.Sprintf("user:%s:events", userID)

	if err := d.client.Publish(ctx, channel, body).Err(); err != nil {
		d.logger.WarnContext(ctx, "notification publish failed",
			"user_id", userID, "event_type", eventType, "error", err)
	}
}

// LogDispatcher logs events instead of publishing them. Used when Redis is not
// configured.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher creates a log-only dispatcher.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogDispatcher{logger: logger}
}

// Notify logs the event at debug level.
func (d *LogDispatcher) Notify(ctx context.Context, userID, eventType string, payload map[string]any) {
	d.logger.DebugContext(ctx, "user notification",
		"user_id", userID, "event_type", eventType, "payload", payload)
}
