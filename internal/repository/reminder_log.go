package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisReminderLog suppresses duplicate due-soon reminders with a SETNX key
// per loan and calendar day. The TTL only needs to outlive the day the key
// is scoped to.
type redisReminderLog struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReminderLog(client *redis.Client) ReminderLog {
	return &redisReminderLog{
		client: client,
		ttl:    48 * time.Hour,
	}
}

func (l *redisReminderLog) MarkSent(ctx context.Context, loanID uuid.UUID, day time.Time) (bool, error) {
	key := fmt.Sprintf("reminder:%s:%s", loanID, day.Format("2006-01-02"))
	return l.client.SetNX(ctx, key, 1, l.ttl).Result()
}
