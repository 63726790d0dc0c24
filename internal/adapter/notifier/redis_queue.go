package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/srgjo27/property_booking/internal/core/domain"
)

// RedisQueue turns booking events into email jobs pushed onto a Redis list.
// Delivery happens later in Worker, outside the request.
type RedisQueue struct {
	client     redis.Cmdable
	queue      string
	adminEmail string
}

func NewRedisQueue(client redis.Cmdable, queue, adminEmail string) *RedisQueue {
	return &RedisQueue{client: client, queue: queue, adminEmail: adminEmail}
}

func (q *RedisQueue) BookingCreated(ctx context.Context, booking *domain.Booking, property *domain.Property) error {
	jobs, err := bookingCreatedEmails(booking, property, q.adminEmail)
	if err != nil {
		return fmt.Errorf("render booking emails: %w", err)
	}
	return q.push(ctx, jobs...)
}

func (q *RedisQueue) BookingStatusChanged(ctx context.Context, booking *domain.Booking, _ domain.BookingStatus) error {
	job, err := statusChangedEmail(booking)
	if err != nil {
		return fmt.Errorf("render status email: %w", err)
	}
	if job == nil {
		return nil
	}
	return q.push(ctx, *job)
}

func (q *RedisQueue) push(ctx context.Context, jobs ...EmailJob) error {
	values := make([]interface{}, 0, len(jobs))
	for _, job := range jobs {
		body, err := json.Marshal(job)
		if err != nil {
			return err
		}
		values = append(values, string(body))
	}

	if err := q.client.LPush(ctx, q.queue, values...).Err(); err != nil {
		return fmt.Errorf("enqueue email jobs: %w", err)
	}
	return nil
}
