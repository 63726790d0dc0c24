package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Worker drains the email queue. A job that fails to send is logged and
// dropped; notifications are best effort.
type Worker struct {
	client      redis.Cmdable
	queue       string
	mailer      Mailer
	logger      *zap.Logger
	pollTimeout time.Duration
}

func NewWorker(client redis.Cmdable, queue string, mailer Mailer, logger *zap.Logger) *Worker {
	return &Worker{
		client:      client,
		queue:       queue,
		mailer:      mailer,
		logger:      logger,
		pollTimeout: 5 * time.Second,
	}
}

func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("notification worker started", zap.String("queue", w.queue))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker stopped")
			return
		default:
		}

		if _, err := w.processNext(ctx); err != nil && ctx.Err() == nil {
			w.logger.Warn("notification queue read failed", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// processNext handles at most one job and reports whether one was taken.
func (w *Worker) processNext(ctx context.Context) (bool, error) {
	res, err := w.client.BRPop(ctx, w.pollTimeout, w.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	if len(res) != 2 {
		return false, nil
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		w.logger.Error("dropping malformed email job", zap.Error(err))
		return true, nil
	}

	if err := w.mailer.Send(ctx, job); err != nil {
		w.logger.Warn("email delivery failed",
			zap.String("kind", job.Kind),
			zap.String("booking_id", job.BookingID),
			zap.Error(err),
		)
		return true, nil
	}

	w.logger.Info("email delivered", zap.String("kind", job.Kind), zap.String("booking_id", job.BookingID))
	return true, nil
}
