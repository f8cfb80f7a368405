package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/core"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	TaskTypeNotification = "roster:notification"
	DefaultQueue         = "notifications"

	rosterIndexPrefix = "slotbot:roster-jobs:"
)

var _ Scheduler = (*AsynqScheduler)(nil)

// AsynqScheduler persists jobs in redis through asynq, so pending
// reminders survive restarts. Task ids of each roster are tracked in a
// redis set to make CancelAll a direct lookup.
type AsynqScheduler struct {
	redis     redis.UniversalClient
	client    *asynq.Client
	inspector *asynq.Inspector
	server    *asynq.Server
	queue     string
	indexTTL  time.Duration
	locks     *core.KeyedMutex
	logger    *zap.Logger
}

type AsynqSchedulerOption func(*AsynqScheduler)

func WithQueue(queue string) AsynqSchedulerOption {
	return func(s *AsynqScheduler) {
		s.queue = queue
	}
}

func NewAsynqScheduler(rdb redis.UniversalClient, logger *zap.Logger, opts ...AsynqSchedulerOption) *AsynqScheduler {
	s := &AsynqScheduler{
		redis:     rdb,
		client:    asynq.NewClientFromRedisClient(rdb),
		inspector: asynq.NewInspectorFromRedisClient(rdb),
		queue:     DefaultQueue,
		indexTTL:  48 * time.Hour,
		locks:     core.NewKeyedMutex(),
		logger:    logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.server = asynq.NewServerFromRedisClient(rdb, asynq.Config{
		Concurrency: 4,
		Queues:      map[string]int{s.queue: 1},
		Logger:      logger.Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			id, _ := asynq.GetTaskID(ctx)
			logger.Error("notification delivery failed",
				zap.String("task_type", task.Type()),
				zap.String("job_key", id),
				zap.Error(err),
			)
		}),
	})

	return s
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

func indexKey(rosterID int64) string {
	return fmt.Sprintf("%s%d", rosterIndexPrefix, rosterID)
}

func (s *AsynqScheduler) Schedule(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	unlock := s.locks.Lock(rosterLockKey(job.RosterID))
	defer unlock()

	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	opts := []asynq.Option{
		asynq.TaskID(job.Key),
		asynq.Queue(s.queue),
		asynq.MaxRetry(0),
	}
	if !job.FireAt.IsZero() {
		opts = append(opts, asynq.ProcessAt(job.FireAt))
	}

	if _, err := s.client.EnqueueContext(ctx, asynq.NewTask(TaskTypeNotification, payload), opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", job.Key, err)
	}

	key := indexKey(job.RosterID)
	pipe := s.redis.TxPipeline()
	pipe.SAdd(ctx, key, job.Key)
	pipe.Expire(ctx, key, s.indexTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index %s: %w", job.Key, err)
	}

	return nil
}

func (s *AsynqScheduler) CancelAll(ctx context.Context, rosterID int64) (int, error) {
	unlock := s.locks.Lock(rosterLockKey(rosterID))
	defer unlock()

	key := indexKey(rosterID)
	ids, err := s.redis.SMembers(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, id := range ids {
		err := s.inspector.DeleteTask(s.queue, id)
		switch {
		case err == nil:
			cancelled++
		case errors.Is(err, asynq.ErrTaskNotFound), errors.Is(err, asynq.ErrQueueNotFound):
			// already fired and cleaned up
		default:
			// an active task cannot be deleted; it is already being delivered
			s.logger.Warn("notification not cancelled",
				zap.String("job_key", id),
				zap.Int64("roster_id", rosterID),
				zap.Error(err),
			)
		}
	}

	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return cancelled, err
	}

	return cancelled, nil
}

func (s *AsynqScheduler) Start(_ context.Context, handler Handler) error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeNotification, func(ctx context.Context, task *asynq.Task) error {
		var job Job
		if err := json.Unmarshal(task.Payload(), &job); err != nil {
			return fmt.Errorf("decode job: %v: %w", err, asynq.SkipRetry)
		}

		if err := s.redis.SRem(ctx, indexKey(job.RosterID), job.Key).Err(); err != nil {
			s.logger.Warn("failed to drop job from index", zap.String("job_key", job.Key), zap.Error(err))
		}

		if err := handler(ctx, job); err != nil {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		return nil
	})

	return s.server.Start(mux)
}

func (s *AsynqScheduler) Stop() error {
	s.server.Shutdown()
	return nil
}
