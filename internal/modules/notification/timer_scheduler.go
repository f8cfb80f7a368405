package notification

import (
	"context"
	"sync"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/core"

	"go.uber.org/zap"
)

var _ Scheduler = (*TimerScheduler)(nil)

type timerEntry struct {
	job   Job
	timer *time.Timer
}

// TimerScheduler keeps pending jobs in process memory. Pending jobs are
// lost on restart.
type TimerScheduler struct {
	logger *zap.Logger
	now    core.Clock
	locks  *core.KeyedMutex

	mu       sync.Mutex
	pending  map[int64]map[string]*timerEntry
	handler  Handler
	ctx      context.Context
	cancel   context.CancelFunc
	stopped  bool
	inflight sync.WaitGroup
}

type TimerSchedulerOption func(*TimerScheduler)

func WithClock(now core.Clock) TimerSchedulerOption {
	return func(s *TimerScheduler) {
		s.now = now
	}
}

func NewTimerScheduler(logger *zap.Logger, opts ...TimerSchedulerOption) *TimerScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &TimerScheduler{
		logger:  logger,
		now:     core.SystemClock,
		locks:   core.NewKeyedMutex(),
		pending: make(map[int64]map[string]*timerEntry),
		ctx:     ctx,
		cancel:  cancel,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *TimerScheduler) Start(ctx context.Context, handler Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handler = handler
	s.cancel()
	s.ctx, s.cancel = context.WithCancel(ctx)
	return nil
}

func (s *TimerScheduler) Schedule(_ context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	unlock := s.locks.Lock(rosterLockKey(job.RosterID))
	defer unlock()

	delay := job.FireAt.Sub(s.now())
	if job.FireAt.IsZero() || delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}

	jobs, ok := s.pending[job.RosterID]
	if !ok {
		jobs = make(map[string]*timerEntry)
		s.pending[job.RosterID] = jobs
	}

	if existing, ok := jobs[job.Key]; ok {
		existing.timer.Stop()
	}

	entry := &timerEntry{job: job}
	entry.timer = time.AfterFunc(delay, func() { s.fire(entry) })
	jobs[job.Key] = entry

	s.logger.Debug("notification scheduled",
		zap.String("job_key", job.Key),
		zap.Int64("roster_id", job.RosterID),
		zap.Duration("delay", delay),
	)

	return nil
}

func (s *TimerScheduler) fire(entry *timerEntry) {
	job := entry.job

	unlock := s.locks.Lock(rosterLockKey(job.RosterID))
	s.mu.Lock()

	jobs := s.pending[job.RosterID]
	owned := jobs[job.Key] == entry
	if owned {
		delete(jobs, job.Key)
		if len(jobs) == 0 {
			delete(s.pending, job.RosterID)
		}
	}

	handler, ctx := s.handler, s.ctx
	deliver := owned && !s.stopped
	if deliver {
		s.inflight.Add(1)
	}

	s.mu.Unlock()
	unlock()

	if !deliver {
		return
	}
	defer s.inflight.Done()

	if handler == nil {
		s.logger.Warn("notification dropped, no handler", zap.String("job_key", job.Key))
		return
	}

	if err := handler(ctx, job); err != nil {
		s.logger.Error("notification delivery failed",
			zap.String("job_key", job.Key),
			zap.Int64("roster_id", job.RosterID),
			zap.Error(err),
		)
	}
}

func (s *TimerScheduler) CancelAll(_ context.Context, rosterID int64) (int, error) {
	unlock := s.locks.Lock(rosterLockKey(rosterID))
	defer unlock()

	s.mu.Lock()
	jobs := s.pending[rosterID]
	delete(s.pending, rosterID)
	s.mu.Unlock()

	for _, entry := range jobs {
		entry.timer.Stop()
	}

	if len(jobs) > 0 {
		s.logger.Debug("notifications cancelled", zap.Int64("roster_id", rosterID), zap.Int("count", len(jobs)))
	}

	return len(jobs), nil
}

// Pending counts jobs of a roster that have neither fired nor been cancelled.
func (s *TimerScheduler) Pending(rosterID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending[rosterID])
}

func (s *TimerScheduler) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	for _, jobs := range s.pending {
		for _, entry := range jobs {
			entry.timer.Stop()
		}
	}
	s.pending = make(map[int64]map[string]*timerEntry)
	s.mu.Unlock()

	s.inflight.Wait()
	s.cancel()

	return nil
}
